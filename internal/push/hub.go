// Package push fans incoming backend push events out to connected dashboard
// sessions over websockets, the foreground delivery channel of the dashboard.
package push

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"crm-admin-gateway/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message is the frame delivered to a dashboard session
type Message struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// client is one connected dashboard session
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected sessions per employee and broadcasts events to them
type Hub struct {
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]map[*client]bool
}

// NewHub creates a new push hub
func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		logger:  logger,
		metrics: m,
		clients: make(map[string]map[*client]bool),
	}
}

// Attach takes ownership of an upgraded connection for an employee and
// pumps frames until the connection drops
func (h *Hub) Attach(employeeID string, conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, 16),
	}

	h.mu.Lock()
	if h.clients[employeeID] == nil {
		h.clients[employeeID] = make(map[*client]bool)
	}
	h.clients[employeeID][c] = true
	count := h.connectionCountLocked()
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetPushConnectionsActive(count)
	}
	h.logger.Info("Push session connected", zap.String("employee_id", employeeID))

	go h.writePump(c)
	h.readPump(employeeID, c)
}

// Broadcast delivers a message to every connected session of an employee and
// reports whether at least one session received it
func (h *Hub) Broadcast(employeeID string, message Message) bool {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal push message", zap.Error(err))
		return false
	}

	h.mu.RLock()
	sessions := h.clients[employeeID]
	delivered := false
	for c := range sessions {
		select {
		case c.send <- payload:
			delivered = true
		default:
			// Slow consumer; drop the frame rather than block the webhook
		}
	}
	h.mu.RUnlock()

	if delivered && h.metrics != nil {
		h.metrics.IncrementNotificationsDelivered()
	}
	return delivered
}

// ConnectionCount returns the number of active sessions
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connectionCountLocked()
}

func (h *Hub) connectionCountLocked() int {
	count := 0
	for _, sessions := range h.clients {
		count += len(sessions)
	}
	return count
}

// detach removes a session and closes its channel
func (h *Hub) detach(employeeID string, c *client) {
	h.mu.Lock()
	if sessions, ok := h.clients[employeeID]; ok {
		if _, ok := sessions[c]; ok {
			delete(sessions, c)
			close(c.send)
			if len(sessions) == 0 {
				delete(h.clients, employeeID)
			}
		}
	}
	count := h.connectionCountLocked()
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetPushConnectionsActive(count)
	}
}

// readPump consumes (and discards) client frames to keep the connection's
// read side healthy and detect disconnects
func (h *Hub) readPump(employeeID string, c *client) {
	defer func() {
		h.detach(employeeID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pushes queued frames and pings to the client
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
