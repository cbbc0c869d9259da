// Package telemetry streams generated footsteps to websocket viewers.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/logger"
)

// Path is the websocket endpoint served by Handler.
const Path = "/footsteps"

const (
	writeTimeout = 2 * time.Second
	sendBuffer   = 64
)

// Message types.
const (
	TypeHello    = "hello"
	TypeFootstep = "footstep"
)

// Envelope wraps every message sent to viewers.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Hello is the first message of every session.
type Hello struct {
	Session string `json:"session"`
}

// Hub fans footstep events out to connected viewers. A viewer whose send
// buffer fills up is disconnected.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler returns an HTTP handler serving the hub at Path.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	return mux
}

// ServeHTTP upgrades the request and keeps the session open until the
// viewer disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("telemetry upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	if !h.register(c) {
		c.close()
		return
	}
	hello, _ := encode(TypeHello, Hello{Session: c.id})
	if err := c.write(hello); err != nil {
		h.unregister(c)
		conn.Close()
		return
	}
	logger.Info("telemetry viewer connected",
		zap.String("session", c.id),
		zap.String("remote", r.RemoteAddr),
	)

	go c.writeLoop(h)

	// Viewers only listen; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
	logger.Info("telemetry viewer disconnected", zap.String("session", c.id))
}

// Publish queues ev for every viewer. It never blocks on the network.
func (h *Hub) Publish(ev footstep.Generated) {
	data, err := encode(TypeFootstep, ev)
	if err != nil {
		logger.Error("telemetry encode failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropLocked(c)
			h.dropped.Add(1)
			logger.Warn("telemetry viewer too slow, dropping", zap.String("session", c.id))
		}
	}
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Sent returns the number of messages written to viewers.
func (h *Hub) Sent() uint64 { return h.sent.Load() }

// Dropped returns the number of viewers dropped for being slow.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.done)
}

func encode(typ string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Data: data})
}

// client is one viewer session. Writes are serialized by mu.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
	send chan []byte
	done chan struct{}
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	c.conn.Close()
}

func (c *client) writeLoop(h *Hub) {
	defer c.close()
	for {
		select {
		case data := <-c.send:
			if err := c.write(data); err != nil {
				h.unregister(c)
				return
			}
			h.sent.Add(1)
		case <-c.done:
			return
		}
	}
}
