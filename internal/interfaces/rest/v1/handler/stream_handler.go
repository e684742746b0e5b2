package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skadri1601/TradeSignal-sub001/internal/application/feed"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/stream"
)

// StreamClient is what the status endpoints need from the push-channel client.
type StreamClient interface {
	Status() stream.Status
	Endpoint() string
	Enabled() bool
	SetEnabled(enabled bool)
}

type StreamHandler struct {
	client StreamClient
	feed   *feed.Feed
	logger logger.Logger
}

type enabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func NewStreamHandler(client StreamClient, f *feed.Feed, logger logger.Logger) *StreamHandler {
	return &StreamHandler{
		client: client,
		feed:   f,
		logger: logger.WithField("handler", "stream"),
	}
}

func (h *StreamHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   h.client.Status(),
		"endpoint": h.client.Endpoint(),
		"enabled":  h.client.Enabled(),
		"feed":     h.feed.Stats(),
	})
}

// SetEnabled toggles the subscription on or off.
func (h *StreamHandler) SetEnabled(c *gin.Context) {
	var req enabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Body must be {\"enabled\": true|false}",
		})
		return
	}

	h.client.SetEnabled(*req.Enabled)
	h.logger.Infof("Stream enabled set to %v", *req.Enabled)

	c.JSON(http.StatusOK, gin.H{
		"enabled": h.client.Enabled(),
		"status":  h.client.Status(),
	})
}

func (h *StreamHandler) RecentTrades(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a non-negative integer",
			})
			return
		}
		limit = n
	}

	trades := h.feed.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(trades),
		"trades": trades,
	})
}

func (h *StreamHandler) CacheEntries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entries": h.feed.Cache().Snapshot(),
	})
}
