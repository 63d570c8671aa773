package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"thriftmart/internal/infrastructure/telemetry"
	"thriftmart/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// SessionHandler is the per-connection logic bound to a Client.
type SessionHandler interface {
	HandleMessage(client *Client, msg WSMessage)
	// Refresh asks the session to refetch its data.
	Refresh()
	// Close releases the session's resources. No messages are sent after
	// it returns.
	Close()
}

// Client represents a WebSocket connection client
type Client struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Handler SessionHandler

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}

// enqueue queues an outbound frame without blocking. A full buffer means the
// peer is not reading; the connection is closed so the read pump unregisters it.
func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		logger.Warn("WebSocket: client %s send buffer full, closing connection", c.ID)
		c.closeConn()
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) closeConn() {
	c.closeOnce.Do(func() {
		if c.Conn != nil {
			c.Conn.Close()
		}
	})
}

// Manager manages all active WebSocket connections
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
	metrics    *telemetry.Metrics
	finalizers sync.WaitGroup
	done       chan struct{}
}

func NewManager(metrics *telemetry.Metrics) *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		metrics:    metrics,
		done:       make(chan struct{}),
	}
}

// Add registers client. It reports false once the manager has stopped.
func (m *Manager) Add(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		return false
	}
}

// Remove unregisters client. It does not block after the manager stopped.
func (m *Manager) Remove(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
	}
}

// Start runs the manager's main loop in a goroutine. When ctx is done every
// remaining client is closed.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				m.observe()
				logger.Debug("WebSocket: client registered: %s", client.ID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				_, ok := m.clients[client.ID]
				if ok {
					delete(m.clients, client.ID)
				}
				m.mutex.Unlock()
				if ok {
					m.observe()
					m.finalize(client)
					logger.Debug("WebSocket: client unregistered: %s", client.ID)
				}

			case <-ctx.Done():
				close(m.done)
				m.mutex.Lock()
				remaining := m.clients
				m.clients = make(map[string]*Client)
				m.mutex.Unlock()
				for _, client := range remaining {
					m.finalize(client)
				}
				m.observe()
				return
			}
		}
	}()
}

// finalize closes the session off the manager loop so a slow Close does not
// hold up registrations.
func (m *Manager) finalize(client *Client) {
	m.finalizers.Add(1)
	go func() {
		defer m.finalizers.Done()
		if client.Handler != nil {
			client.Handler.Close()
		}
		client.closeSend()
		client.closeConn()
	}()
}

// Wait blocks until every unregistered client has been finalized.
func (m *Manager) Wait() {
	m.finalizers.Wait()
}

func (m *Manager) observe() {
	if m.metrics == nil {
		return
	}
	m.metrics.ActiveSessions.Set(float64(m.Count()))
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// RefreshAll asks every connected session to refetch.
func (m *Manager) RefreshAll() int {
	m.mutex.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mutex.RUnlock()

	for _, c := range clients {
		if c.Handler != nil {
			c.Handler.Refresh()
		}
	}
	return len(clients)
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Remove(c)
		c.closeConn()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error from %s: %v", c.ID, err)
			}
			break
		}

		m.HandleClientMessage(c, message)
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket: write error to %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
