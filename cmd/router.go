package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skadri1601/TradeSignal-sub001/internal/application/feed"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/hub"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/stream"
	"github.com/skadri1601/TradeSignal-sub001/internal/interfaces/rest/v1/handler"
	"github.com/skadri1601/TradeSignal-sub001/internal/interfaces/websocket"
)

func newEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	return router
}

// InitServeRouter wires the development push source.
func InitServeRouter(hubInstance *hub.Hub, log logger.Logger) http.Handler {
	router := newEngine()
	rootGroup := router.Group("")

	rootGroup.GET("/hub/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"hub_running": hubInstance.IsRunning(),
			"connections": hubInstance.ConnectionCount(),
			"published":   hubInstance.Published(),
		})
	})

	handler.InitTradeRouter(log, hubInstance, rootGroup)
	websocket.InitTradeStreamRouter(log, hubInstance, rootGroup)

	return router
}

// InitWatchRouter wires the status surface of a running subscription.
func InitWatchRouter(client *stream.Client, f *feed.Feed, log logger.Logger) http.Handler {
	router := newEngine()
	rootGroup := router.Group("")

	rootGroup.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	handler.InitStreamRouter(log, client, f, rootGroup)

	return router
}
