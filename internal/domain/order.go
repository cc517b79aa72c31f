package domain

import (
	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Order is a single limit order submitted by a participant.
// Immutable once created; consumed when its tick is processed.
type Order struct {
	ParticipantID string  `json:"participant_id"`
	SecurityID    string  `json:"security_id"`
	Side          Side    `json:"side"`
	Price         float64 `json:"price"`
	Size          int64   `json:"size"`
	Tick          int64   `json:"tick"`
}

// LimitValue is the cash required to fill the order fully at its limit
// price. BUY validation checks against this, not the eventual
// settlement price.
func (o Order) LimitValue() decimal.Decimal {
	return decimal.NewFromFloat(o.Price).Mul(decimal.NewFromInt(o.Size))
}

// IsBuy reports whether the order is on the bid side.
func (o Order) IsBuy() bool {
	return o.Side == Buy
}

// Trade is an executed match between two parties.
// Produced only by a matching engine; consumed once by settlement.
type Trade struct {
	BuyerID    string  `json:"buyer_id"`
	SellerID   string  `json:"seller_id"`
	SecurityID string  `json:"security_id"`
	Price      float64 `json:"price"`
	Size       int64   `json:"size"`
	Tick       int64   `json:"tick"`
}

// Value is the cash transferred by the trade (price x size).
func (t Trade) Value() decimal.Decimal {
	return decimal.NewFromFloat(t.Price).Mul(decimal.NewFromInt(t.Size))
}
