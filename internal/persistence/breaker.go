package persistence

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerRepo wraps an AuditRepo with a circuit breaker so a dead audit
// database degrades to logged drops instead of blocking evaluation.
// Audit writes are best-effort: classification and parlay results are
// already returned to the caller before any persistence happens.
type BreakerRepo struct {
	inner   AuditRepo
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerRepo wraps repo with default breaker settings
func NewBreakerRepo(repo AuditRepo) *BreakerRepo {
	settings := gobreaker.Settings{
		Name:        "audit-db",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("audit sink circuit breaker state change")
		},
	}

	return &BreakerRepo{
		inner:   repo,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// SaveClassification forwards through the breaker
func (b *BreakerRepo) SaveClassification(ctx context.Context, record ClassificationRecord) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.inner.SaveClassification(ctx, record)
	})
	if err != nil {
		log.Warn().Err(err).Str("id", record.ID).Msg("classification audit write dropped")
	}
	return err
}

// SaveParlayAttempt forwards through the breaker
func (b *BreakerRepo) SaveParlayAttempt(ctx context.Context, record ParlayAttemptRecord) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.inner.SaveParlayAttempt(ctx, record)
	})
	if err != nil {
		log.Warn().Err(err).Str("id", record.ID).Msg("parlay audit write dropped")
	}
	return err
}
