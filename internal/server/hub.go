package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/dispatch"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/feed"
)

// Hub fans live feed updates out to websocket clients.
type Hub struct {
	logger   *slog.Logger
	input    *dispatch.Buffer[feed.Update]
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// wsMessage is the frame sent to websocket clients.
type wsMessage struct {
	Type      string       `json:"type"`
	Token     string       `json:"token,omitempty"`
	Update    *feed.Update `json:"update,omitempty"`
	Error     string       `json:"error,omitempty"`
	Timestamp int64        `json:"ts"`
}

// NewHub creates a hub reading updates from input.
func NewHub(input *dispatch.Buffer[feed.Update], logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:   logger,
		input:    input,
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Start begins consuming updates and broadcasting them.
func (h *Hub) Start(ctx context.Context) error {
	h.ctx, h.cancel = context.WithCancel(ctx)

	h.wg.Add(1)
	go h.broadcastLoop()

	h.logger.Info("websocket hub started")
	return nil
}

// Stop disconnects all clients and ends the broadcast loop.
func (h *Hub) Stop(ctx context.Context) error {
	if h.cancel != nil {
		h.cancel()
	}

	h.mu.Lock()
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount reports connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler accepts websocket connections.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "err", err)
			return
		}

		h.mu.Lock()
		h.clients[conn] = struct{}{}
		h.mu.Unlock()
		h.logger.Debug("websocket client connected", "remote", conn.RemoteAddr())

		// Read loop drains control frames and detects disconnects.
		go func() {
			defer func() {
				h.mu.Lock()
				delete(h.clients, conn)
				h.mu.Unlock()
				conn.Close()
				h.logger.Debug("websocket client disconnected", "remote", conn.RemoteAddr())
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return
		default:
			u, ok := h.input.TryPop()
			if !ok {
				select {
				case <-h.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}
			h.broadcast(u)
		}
	}
}

func (h *Hub) broadcast(u feed.Update) {
	msg, err := json.Marshal(wsMessage{
		Type:      "feed_update",
		Token:     u.Token,
		Update:    &u,
		Error:     u.Err,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		h.logger.Warn("failed to encode update", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("websocket write failed", "err", err)
			c.Close()
			delete(h.clients, c)
		}
	}
}
