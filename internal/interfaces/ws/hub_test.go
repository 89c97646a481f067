package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharpline/sharpline/internal/domain"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	wsSrv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(wsSrv.Close)

	url := "ws" + strings.TrimPrefix(wsSrv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_EdgeBroadcast(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub)

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.PublishEdge(domain.ClassificationResult{
		Sport:          "NBA",
		MarketType:     domain.MarketSpread,
		Classification: domain.ClassificationEdge,
		EdgeMetric:     5.0,
		Selection:      domain.Selection{Side: "BOS", Line: -4.5, Method: domain.MethodConsensus},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg edgeMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "edge_signal", msg.Type)
	assert.Equal(t, domain.ClassificationEdge, msg.Result.Classification)
	assert.Equal(t, "BOS", msg.Result.Selection.Side)
}

func TestHub_NonEdgeFiltered(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub)

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.PublishEdge(domain.ClassificationResult{
		Sport:          "NBA",
		Classification: domain.ClassificationLean,
	})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "LEAN results must never reach subscribers")
}

func TestHub_ShutdownClosesSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	dialHub(t, hub)
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 0
	}, time.Second, 10*time.Millisecond)
}
