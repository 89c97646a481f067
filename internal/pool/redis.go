// Package pool reads classified legs from the upstream signal store.
package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sharpline/sharpline/internal/domain"
)

const defaultKeyPrefix = "sharpline:legs:"

// LegStore is a read-only adapter over the Redis board the upstream
// classifier publishes legs into, one JSON entry per leg in a list keyed
// by board date.
type LegStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewLegStore connects to Redis at addr
func NewLegStore(addr, password string, db int) *LegStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return NewLegStoreWithClient(client)
}

// NewLegStoreWithClient wraps an existing client (testing)
func NewLegStoreWithClient(client *redis.Client) *LegStore {
	return &LegStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}
}

// Legs returns every leg published for a board date (YYYY-MM-DD).
// Entries that fail to decode are an error, not a silent skip: a corrupt
// pool must never produce a quietly smaller parlay universe.
func (s *LegStore) Legs(ctx context.Context, boardDate string) ([]domain.Leg, error) {
	key := s.keyPrefix + boardDate

	entries, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leg board %s: %w", key, err)
	}

	legs := make([]domain.Leg, 0, len(entries))
	for i, entry := range entries {
		var leg domain.Leg
		if err := json.Unmarshal([]byte(entry), &leg); err != nil {
			return nil, fmt.Errorf("corrupt leg entry %d on board %s: %w", i, key, err)
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

// Health pings the store
func (s *LegStore) Health(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

// Close releases the underlying client
func (s *LegStore) Close() error {
	return s.client.Close()
}
