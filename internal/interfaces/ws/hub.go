// Package ws pushes EDGE classifications to display-layer subscribers.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sharpline/sharpline/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// edgeMessage is the wire envelope subscribers receive
type edgeMessage struct {
	Type   string                      `json:"type"`
	SentAt time.Time                   `json:"sent_at"`
	Result domain.ClassificationResult `json:"result"`
}

// Hub fans EDGE classifications out to connected subscribers. Slow
// subscribers are dropped rather than allowed to back-pressure the feed.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]bool
	broadcast chan domain.ClassificationResult
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an idle hub; call Run to start fan-out
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*client]bool),
		broadcast: make(chan domain.ClassificationResult, 64),
	}
}

// Run fans out broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case result := <-h.broadcast:
			payload, err := json.Marshal(edgeMessage{
				Type:   "edge_signal",
				SentAt: time.Now().UTC(),
				Result: result,
			})
			if err != nil {
				log.Error().Err(err).Msg("edge message encoding failed")
				continue
			}
			h.fanOut(payload)
		}
	}
}

// PublishEdge enqueues an EDGE classification for broadcast. Non-EDGE
// results are ignored: subscribers only act on EDGE.
func (h *Hub) PublishEdge(result domain.ClassificationResult) {
	if result.Classification != domain.ClassificationEdge {
		return
	}
	select {
	case h.broadcast <- result:
	default:
		log.Warn().Msg("edge broadcast queue full, dropping signal")
	}
}

// ServeWS upgrades an HTTP request into a subscriber connection
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register(c)
	go h.writePump(c)
}

// SubscriberCount returns the number of connected subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) fanOut(payload []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			// Subscriber can't keep up
			h.unregister(c)
			c.conn.Close()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

func (h *Hub) writePump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
