package websocket

import (
	"github.com/gin-gonic/gin"

	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/hub"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/stream"
)

// InitTradeStreamRouter mounts the push channel at the path clients derive.
func InitTradeStreamRouter(logger logger.Logger, hubInstance *hub.Hub, rg *gin.RouterGroup) {
	wsHandler := NewTradeStreamHandler(hubInstance, logger)

	rg.GET(stream.StreamPath, wsHandler.Connect)

	apiGroup := rg.Group("/api/v1/stream")
	apiGroup.GET("/connections", wsHandler.GetConnections)
	apiGroup.POST("/disconnect", wsHandler.Disconnect)
}
