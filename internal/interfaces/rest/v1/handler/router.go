package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/skadri1601/TradeSignal-sub001/internal/application/feed"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/hub"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
)

// InitTradeRouter mounts the publishing endpoints of the development push source.
func InitTradeRouter(logger logger.Logger, hubInstance *hub.Hub, rg *gin.RouterGroup) {
	tradeHandler := NewTradeHandler(hubInstance, logger)

	apiGroup := rg.Group("/api/v1/trades")
	apiGroup.POST("", tradeHandler.Create)
	apiGroup.PUT("/:id", tradeHandler.Update)
}

// InitStreamRouter mounts the watch-mode status endpoints.
func InitStreamRouter(logger logger.Logger, client StreamClient, f *feed.Feed, rg *gin.RouterGroup) {
	streamHandler := NewStreamHandler(client, f, logger)

	streamGroup := rg.Group("/stream")
	streamGroup.GET("/status", streamHandler.Status)
	streamGroup.PUT("/enabled", streamHandler.SetEnabled)

	rg.GET("/trades/recent", streamHandler.RecentTrades)
	rg.GET("/cache", streamHandler.CacheEntries)
}
