package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
)

const (
	writeTimeout = 10 * time.Second
	// Must stay above the client's 15s text heartbeat.
	readTimeout = 60 * time.Second
	pingPeriod  = 54 * time.Second

	heartbeatText = "ping"
)

// WebSocketConnection implements the Connection interface for WebSocket connections
type WebSocketConnection struct {
	id   string
	conn *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex

	logger logger.Logger

	send chan *Event

	lastActivity time.Time
	activityMu   sync.RWMutex
}

// NewWebSocketConnection wraps an upgraded connection and starts its pumps.
func NewWebSocketConnection(
	id string,
	conn *websocket.Conn,
	logger logger.Logger,
) *WebSocketConnection {
	ctx, cancel := context.WithCancel(context.Background())

	wsConn := &WebSocketConnection{
		id:           id,
		conn:         conn,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger.WithField("connection_id", id),
		send:         make(chan *Event, 256),
		lastActivity: time.Now(),
	}

	wsConn.conn.SetReadDeadline(time.Now().Add(readTimeout))
	wsConn.conn.SetPongHandler(func(string) error {
		wsConn.touch()
		return nil
	})

	go wsConn.writePump()
	go wsConn.readPump()

	return wsConn
}

// ID returns unique connection identifier
func (c *WebSocketConnection) ID() string {
	return c.id
}

// Send queues an event for the write pump.
func (c *WebSocketConnection) Send(ctx context.Context, event *Event) error {
	if c.IsClosed() {
		return fmt.Errorf("websocket connection is closed")
	}

	select {
	case c.send <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return fmt.Errorf("connection closed")
	case <-time.After(5 * time.Second):
		return fmt.Errorf("send timeout")
	}
}

// Close marks the connection closed; the write pump sends the close frame
// and releases the socket so that only one goroutine ever writes.
func (c *WebSocketConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cancel()

	c.logger.Info("WebSocket connection closed")
	return nil
}

// IsClosed returns true if connection is closed
func (c *WebSocketConnection) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// Context returns the connection's context (for cancellation)
func (c *WebSocketConnection) Context() context.Context {
	return c.ctx
}

// LastActivity returns when the peer was last heard from.
func (c *WebSocketConnection) LastActivity() time.Time {
	c.activityMu.RLock()
	defer c.activityMu.RUnlock()
	return c.lastActivity
}

func (c *WebSocketConnection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(event); err != nil {
				c.logger.Errorf("Failed to write event: %v", err)
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Errorf("Failed to send ping: %v", err)
				c.Close()
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			return
		}
	}
}

// readPump consumes client frames. The only frames clients send are text
// heartbeats, which are never answered.
func (c *WebSocketConnection) readPump() {
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Errorf("WebSocket error: %v", err)
			}
			return
		}

		c.touch()

		switch {
		case messageType == websocket.TextMessage && string(data) == heartbeatText:
			c.logger.Debug("Heartbeat received")
		case messageType == websocket.TextMessage:
			c.logger.Debugf("Ignoring text frame: %s", string(data))
		default:
			c.logger.Debugf("Ignoring binary frame of length: %d", len(data))
		}
	}
}

func (c *WebSocketConnection) touch() {
	c.activityMu.Lock()
	c.lastActivity = time.Now()
	c.activityMu.Unlock()
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
}
