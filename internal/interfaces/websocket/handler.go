package websocket

import (
	"crypto/rand"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/hub"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
)

// TradeStreamHandler upgrades trade-stream subscribers and hands them to the hub.
type TradeStreamHandler struct {
	hub      *hub.Hub
	logger   logger.Logger
	upgrader websocket.Upgrader
}

func NewTradeStreamHandler(hubInstance *hub.Hub, logger logger.Logger) *TradeStreamHandler {
	return &TradeStreamHandler{
		hub:    hubInstance,
		logger: logger.WithField("handler", "trade_stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Development push source; browsers on any origin may subscribe.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles WebSocket connection upgrade requests
func (h *TradeStreamHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("Hub is not running")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := hub.NewWebSocketConnection(generateConnectionID(), conn, h.logger)

	if err := h.hub.RegisterConnection(wsConn); err != nil {
		h.logger.Errorf("Failed to register WebSocket connection: %v", err)
		wsConn.Close()
		return
	}

	h.logger.Infof("Trade stream subscriber %s connected", wsConn.ID())

	<-wsConn.Context().Done()
	h.logger.Infof("Trade stream subscriber %s disconnected", wsConn.ID())
}

// GetConnections lists current subscribers.
func (h *TradeStreamHandler) GetConnections(c *gin.Context) {
	connections := h.hub.GetConnections()
	connectionInfo := make([]gin.H, len(connections))

	for i, conn := range connections {
		connectionInfo[i] = gin.H{
			"id":     conn.ID(),
			"closed": conn.IsClosed(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(connections),
		"connections":       connectionInfo,
		"hub_running":       h.hub.IsRunning(),
	})
}

// Disconnect drops every subscriber, which exercises client reconnects.
func (h *TradeStreamHandler) Disconnect(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"disconnected": h.hub.DisconnectAll(),
	})
}

func generateConnectionID() string {
	b := make([]byte, 8)
	// crypto/rand.Read never returns an error as of Go 1.24.
	_, _ = rand.Read(b)
	return fmt.Sprintf("ws-%x", b)
}
