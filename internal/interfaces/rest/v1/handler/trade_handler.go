package handler

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skadri1601/TradeSignal-sub001/internal/domain/trade"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/hub"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
)

// TradeHandler publishes trade announcements onto the push channel.
type TradeHandler struct {
	hub    *hub.Hub
	logger logger.Logger
	nextID atomic.Int64
}

type TradeRequest struct {
	Ticker          string  `json:"ticker" binding:"required"`
	CompanyName     string  `json:"company_name"`
	InsiderName     string  `json:"insider_name" binding:"required"`
	InsiderTitle    string  `json:"insider_title"`
	TransactionType string  `json:"transaction_type" binding:"required,oneof=buy sell BUY SELL"`
	Shares          float64 `json:"shares" binding:"gte=0"`
	PricePerShare   float64 `json:"price_per_share" binding:"gte=0"`
	FiledAt         string  `json:"filed_at"`
}

func NewTradeHandler(hubInstance *hub.Hub, logger logger.Logger) *TradeHandler {
	return &TradeHandler{
		hub:    hubInstance,
		logger: logger.WithField("handler", "trade"),
	}
}

// Create announces a new trade as trade_created.
func (h *TradeHandler) Create(c *gin.Context) {
	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid request format: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid trade format",
		})
		return
	}

	t := req.toTrade(h.nextID.Add(1))
	h.publish(c, hub.TradeCreatedEvent(t), http.StatusCreated)
}

// Update announces a change to trade :id as trade_updated.
func (h *TradeHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Trade id must be a positive integer",
		})
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid request format: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid trade format",
		})
		return
	}

	h.publish(c, hub.TradeUpdatedEvent(req.toTrade(id)), http.StatusOK)
}

func (h *TradeHandler) publish(c *gin.Context, event *hub.Event, status int) {
	if err := h.hub.Broadcast(c.Request.Context(), event); err != nil {
		h.logger.Errorf("Failed to broadcast %s: %v", event.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to publish trade",
		})
		return
	}

	h.logger.Infof("Published %s for trade %d to %d connections", event.Type, event.Trade.ID, h.hub.ConnectionCount())

	c.JSON(status, gin.H{
		"status":      "published",
		"type":        event.Type,
		"trade":       event.Trade,
		"connections": h.hub.ConnectionCount(),
	})
}

func (r *TradeRequest) toTrade(id int64) *trade.Trade {
	filedAt := time.Now().UTC()
	if r.FiledAt != "" {
		if parsed, err := time.Parse(time.RFC3339, r.FiledAt); err == nil {
			filedAt = parsed
		}
	}

	t := &trade.Trade{
		ID:              id,
		Ticker:          r.Ticker,
		CompanyName:     r.CompanyName,
		InsiderName:     r.InsiderName,
		InsiderTitle:    r.InsiderTitle,
		TransactionType: trade.TransactionType(r.TransactionType),
		Shares:          r.Shares,
		PricePerShare:   r.PricePerShare,
		FiledAt:         filedAt,
	}
	t.Normalize()
	return t
}
