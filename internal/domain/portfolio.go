package domain

import (
	"github.com/shopspring/decimal"

	"github.com/dewgong5/nwhacks2026/pkg/safe"
)

// Portfolio tracks one participant's cash and security positions.
// Cash is decimal so that settlement transfers conserve the total
// exactly; positions are whole units.
type Portfolio struct {
	ParticipantID string           `json:"participant_id"`
	Cash          decimal.Decimal  `json:"cash"`
	Positions     map[string]int64 `json:"positions"`
}

// NewPortfolio creates an empty portfolio with the given starting cash.
func NewPortfolio(participantID string, initialCash float64) *Portfolio {
	return &Portfolio{
		ParticipantID: participantID,
		Cash:          decimal.NewFromFloat(initialCash),
		Positions:     make(map[string]int64),
	}
}

// Clone returns an independently owned deep copy. Callers must never
// be able to mutate orchestrator-owned state through a snapshot.
func (p *Portfolio) Clone() *Portfolio {
	positions := make(map[string]int64, len(p.Positions))
	for sec, qty := range p.Positions {
		positions[sec] = qty
	}
	return &Portfolio{
		ParticipantID: p.ParticipantID,
		Cash:          p.Cash,
		Positions:     positions,
	}
}

// Position returns the held quantity for a security (0 if none).
func (p *Portfolio) Position(securityID string) int64 {
	return p.Positions[securityID]
}

// CanAfford reports whether cash covers the given amount.
func (p *Portfolio) CanAfford(amount decimal.Decimal) bool {
	return p.Cash.GreaterThanOrEqual(amount)
}

// Holds reports whether the portfolio holds at least size units.
func (p *Portfolio) Holds(securityID string, size int64) bool {
	return p.Positions[securityID] >= size
}

// Credit adds cash to the portfolio.
func (p *Portfolio) Credit(amount decimal.Decimal) {
	p.Cash = p.Cash.Add(amount)
}

// Debit removes cash from the portfolio.
func (p *Portfolio) Debit(amount decimal.Decimal) {
	p.Cash = p.Cash.Sub(amount)
}

// AdjustPosition applies a signed quantity delta. Entries that reach
// exactly zero are removed to keep position maps sparse.
func (p *Portfolio) AdjustPosition(securityID string, delta int64) {
	next := safe.Add(p.Positions[securityID], delta)
	if next == 0 {
		delete(p.Positions, securityID)
		return
	}
	p.Positions[securityID] = next
}
