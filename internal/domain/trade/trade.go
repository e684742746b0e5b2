package trade

import (
	"errors"
	"strings"
	"time"
)

// Event types announced on the push channel.
const (
	EventCreated = "trade_created"
	EventUpdated = "trade_updated"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Trade is an insider transaction as announced by the API.
type Trade struct {
	ID              int64           `json:"id"`
	Ticker          string          `json:"ticker,omitempty"`
	CompanyName     string          `json:"company_name,omitempty"`
	InsiderName     string          `json:"insider_name,omitempty"`
	InsiderTitle    string          `json:"insider_title,omitempty"`
	TransactionType TransactionType `json:"transaction_type,omitempty"`
	Shares          float64         `json:"shares,omitempty"`
	PricePerShare   float64         `json:"price_per_share,omitempty"`
	FiledAt         time.Time       `json:"filed_at,omitzero"`
}

var (
	ErrMissingID       = errors.New("trade id must be positive")
	ErrBadTransaction  = errors.New("transaction type must be buy or sell")
	ErrNegativeAmounts = errors.New("shares and price cannot be negative")
)

func (t *Trade) Validate() error {
	if t.ID <= 0 {
		return ErrMissingID
	}
	switch t.TransactionType {
	case "", TransactionBuy, TransactionSell:
	default:
		return ErrBadTransaction
	}
	if t.Shares < 0 || t.PricePerShare < 0 {
		return ErrNegativeAmounts
	}
	return nil
}

// Value is shares times price per share.
func (t *Trade) Value() float64 {
	return t.Shares * t.PricePerShare
}

// Normalize upper-cases the ticker and lower-cases the transaction type.
func (t *Trade) Normalize() {
	t.Ticker = strings.ToUpper(strings.TrimSpace(t.Ticker))
	t.TransactionType = TransactionType(strings.ToLower(strings.TrimSpace(string(t.TransactionType))))
}
