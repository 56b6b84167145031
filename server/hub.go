package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/comodofi/perps/app"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Demo server: accept all origins.
		return true
	},
}

// MarkUpdate is the message broadcast to WebSocket clients on each refresh.
type MarkUpdate struct {
	Symbol     string    `json:"symbol"`
	Mark       float64   `json:"mark"`
	FundingPct float64   `json:"funding_pct"`
	Time       time.Time `json:"time"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans mark-price refreshes out to connected WebSocket clients. It runs
// its own refresh ticker against the app's cached series, so clients see a
// new mark at most once per refresh interval.
type Hub struct {
	core     *app.App
	interval time.Duration
	logger   *slog.Logger

	mu         sync.RWMutex
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

func NewHub(core *app.App, interval time.Duration, logger *slog.Logger) *Hub {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Hub{
		core:       core,
		interval:   interval,
		logger:     logger,
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run starts the hub's event loop and refresh ticker. It should be called
// in a goroutine; it exits when the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case <-ticker.C:
			h.publishMarks(ctx)

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info("ws: client connected", slog.Int("total_clients", h.clientCount()))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("ws: client disconnected", slog.Int("total_clients", h.clientCount()))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Client's send buffer is full; drop the message.
					h.logger.Warn("ws: dropping message for slow client")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// publishMarks refreshes every registered index and broadcasts its mark and
// funding estimate. A failing index is skipped; the others still publish.
func (h *Hub) publishMarks(ctx context.Context) {
	for _, idx := range h.core.ListIndices() {
		mark, err := h.core.Mark(ctx, idx.Symbol)
		if err != nil {
			h.logger.Warn("ws: mark refresh failed",
				slog.String("symbol", idx.Symbol),
				slog.String("error", err.Error()),
			)
			continue
		}
		funding, err := h.core.FundingEstimate(ctx, idx.Symbol)
		if err != nil {
			continue
		}

		data, err := json.Marshal(MarkUpdate{
			Symbol:     idx.Symbol,
			Mark:       mark,
			FundingPct: funding,
			Time:       time.Now().UTC(),
		})
		if err != nil {
			continue
		}

		select {
		case h.broadcast <- data:
		default:
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS upgrades an HTTP request to a WebSocket connection and registers
// the client with the hub.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump drains incoming frames so pings/pongs and close frames are
// processed; clients have nothing meaningful to send.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
