package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/kanonhq/kanon/internal/log"
)

// Progress is the live simulation progress record pushed to WebSocket
// subscribers.
type Progress struct {
	Type          string `json:"type"`
	CompletedRuns int    `json:"completedRuns"`
	TotalRuns     int    `json:"totalRuns"`
	Percent       int    `json:"percent"`
}

const clientSendBuffer = 16

// Hub fans simulation progress out to connected WebSocket clients. All
// client registration and delivery runs on the single Run goroutine; a
// client that cannot keep up is dropped rather than blocking the others.
type Hub struct {
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	clients    map[*wsClient]struct{}
	done       chan struct{}
	logger     log.Logger
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a progress hub. Call Run to start delivery.
func NewHub(logger log.Logger) *Hub {
	return &Hub{
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*wsClient]struct{}),
		done:       make(chan struct{}),
		logger:     logger.With("component", "ws"),
	}
}

// Run delivers broadcasts until ctx is canceled, then disconnects all
// clients. Blocks; run it on its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast queues p for delivery to all connected clients. Never blocks:
// when the hub is saturated the update is dropped, later updates supersede it.
func (h *Hub) Broadcast(p Progress) {
	b, err := json.Marshal(p)
	if err != nil {
		h.logger.Error("marshaling progress", "error", err)
		return
	}
	select {
	case h.broadcast <- b:
	default:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement happens in the CORS middleware; the hub carries
	// no sensitive state beyond progress counters.
	CheckOrigin: func(*http.Request) bool { return true },
}

// serveWS upgrades the connection and subscribes it to progress updates.
func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{hub: h, conn: conn, send: make(chan []byte, clientSendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *wsClient) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	// Hub closed the channel: say goodbye before dropping the connection.
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

// readPump discards inbound messages and unregisters on disconnect.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
