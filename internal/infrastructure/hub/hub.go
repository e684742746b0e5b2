package hub

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
)

// Hub fans trade events out to every registered stream subscriber.
type Hub struct {
	connections   map[string]Connection
	connectionsMu sync.RWMutex

	running   bool
	runningMu sync.RWMutex

	logger logger.Logger

	register   chan Connection
	unregister chan string
	broadcast  chan *Event

	published atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Hub instance
func New(logger logger.Logger) *Hub {
	return &Hub{
		connections: make(map[string]Connection),
		logger:      logger.WithField("component", "hub"),
		register:    make(chan Connection, 100),
		unregister:  make(chan string, 100),
		broadcast:   make(chan *Event, 1000),
	}
}

// Start starts the hub and begins processing connection events
func (h *Hub) Start(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if h.running {
		return fmt.Errorf("hub is already running")
	}

	h.ctx, h.cancel = context.WithCancel(ctx)
	h.running = true

	go h.run()

	h.logger.Info("Hub started successfully")
	return nil
}

// Stop gracefully stops the hub and disconnects all connections
func (h *Hub) Stop(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if !h.running {
		return nil
	}

	h.cancel()

	h.connectionsMu.Lock()
	for _, conn := range h.connections {
		if err := conn.Close(); err != nil {
			h.logger.Errorf("Failed to close connection %s: %v", conn.ID(), err)
		}
	}
	h.connections = make(map[string]Connection)
	h.connectionsMu.Unlock()

	h.running = false
	h.logger.Info("Hub stopped successfully")
	return nil
}

// IsRunning returns true if the hub is currently running
func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}

// RegisterConnection adds a new connection to the hub
func (h *Hub) RegisterConnection(conn Connection) error {
	if !h.IsRunning() {
		return fmt.Errorf("hub is not running")
	}

	select {
	case h.register <- conn:
		return nil
	case <-h.ctx.Done():
		return fmt.Errorf("hub is shutting down")
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout registering connection")
	}
}

// UnregisterConnection removes a connection from the hub
func (h *Hub) UnregisterConnection(connID string) error {
	if !h.IsRunning() {
		return fmt.Errorf("hub is not running")
	}

	select {
	case h.unregister <- connID:
		return nil
	case <-h.ctx.Done():
		return fmt.Errorf("hub is shutting down")
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout unregistering connection")
	}
}

// GetConnection returns a connection by ID
func (h *Hub) GetConnection(connID string) (Connection, bool) {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()

	conn, exists := h.connections[connID]
	return conn, exists
}

// GetConnections returns all active connections
func (h *Hub) GetConnections() []Connection {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()

	connections := make([]Connection, 0, len(h.connections))
	for _, conn := range h.connections {
		connections = append(connections, conn)
	}
	return connections
}

// ConnectionCount returns the number of active connections
func (h *Hub) ConnectionCount() int {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()
	return len(h.connections)
}

// Published returns how many events have been accepted for broadcast.
func (h *Hub) Published() int64 {
	return h.published.Load()
}

// Broadcast validates an event and queues it for every connection.
func (h *Hub) Broadcast(ctx context.Context, event *Event) error {
	if !h.IsRunning() {
		return fmt.Errorf("hub is not running")
	}
	if err := ValidateEvent(event); err != nil {
		return err
	}

	select {
	case h.broadcast <- event:
		h.published.Add(1)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled")
	case <-h.ctx.Done():
		return fmt.Errorf("hub is shutting down")
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout broadcasting event")
	}
}

// DisconnectAll closes every connection while keeping the hub running.
// Subscribers are expected to reconnect on their own.
func (h *Hub) DisconnectAll() int {
	connections := h.GetConnections()
	for _, conn := range connections {
		conn.Close()
	}
	h.logger.Infof("Disconnected %d connections", len(connections))
	return len(connections)
}

func (h *Hub) run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case conn := <-h.register:
			h.handleRegister(conn)

		case connID := <-h.unregister:
			h.handleUnregister(connID)

		case event := <-h.broadcast:
			h.handleBroadcast(event)

		case <-ticker.C:
			h.cleanupClosedConnections()

		case <-h.ctx.Done():
			h.logger.Info("Hub run loop stopped")
			return
		}
	}
}

func (h *Hub) handleRegister(conn Connection) {
	h.connectionsMu.Lock()
	h.connections[conn.ID()] = conn
	h.connectionsMu.Unlock()

	h.logger.Infof("Connection %s registered", conn.ID())

	go func() {
		select {
		case <-conn.Context().Done():
			h.UnregisterConnection(conn.ID())
		case <-h.ctx.Done():
		}
	}()
}

func (h *Hub) handleUnregister(connID string) {
	h.connectionsMu.Lock()
	conn, exists := h.connections[connID]
	if exists {
		delete(h.connections, connID)
		conn.Close()
	}
	h.connectionsMu.Unlock()

	if exists {
		h.logger.Infof("Connection %s unregistered", connID)
	}
}

// handleBroadcast sends sequentially; each subscriber sees events in
// publish order.
func (h *Hub) handleBroadcast(event *Event) {
	connections := h.GetConnections()

	for _, conn := range connections {
		ctx, cancel := context.WithTimeout(h.ctx, time.Second)
		err := conn.Send(ctx, event)
		cancel()
		if err != nil {
			h.logger.Errorf("Failed to send %s to connection %s: %v", event.Type, conn.ID(), err)
			go h.UnregisterConnection(conn.ID())
		}
	}

	h.logger.Infof("Broadcasted %s to %d connections", event.Type, len(connections))
}

func (h *Hub) cleanupClosedConnections() {
	h.connectionsMu.Lock()
	defer h.connectionsMu.Unlock()

	for id, conn := range h.connections {
		if conn.IsClosed() {
			delete(h.connections, id)
			h.logger.Infof("Cleaned up closed connection %s", id)
		}
	}
}
