package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPortfolio_CreditDebit(t *testing.T) {
	p := NewPortfolio("alice", 1000)

	p.Credit(decimal.NewFromInt(250))
	if !p.Cash.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("expected 1250, got %s", p.Cash)
	}

	p.Debit(decimal.NewFromInt(1250))
	if !p.Cash.Equal(decimal.Zero) {
		t.Errorf("expected 0, got %s", p.Cash)
	}
}

func TestPortfolio_AdjustPosition_RemovesZeroEntries(t *testing.T) {
	p := NewPortfolio("bob", 0)

	p.AdjustPosition("AAPL", 10)
	if p.Position("AAPL") != 10 {
		t.Errorf("expected 10, got %d", p.Position("AAPL"))
	}

	p.AdjustPosition("AAPL", -10)
	if _, ok := p.Positions["AAPL"]; ok {
		t.Error("zero position should be removed from the map")
	}
}

func TestPortfolio_Clone_IsIndependent(t *testing.T) {
	p := NewPortfolio("carol", 500)
	p.AdjustPosition("MSFT", 3)

	c := p.Clone()
	c.Debit(decimal.NewFromInt(500))
	c.AdjustPosition("MSFT", 7)

	if !p.Cash.Equal(decimal.NewFromInt(500)) {
		t.Errorf("clone mutation leaked into original cash: %s", p.Cash)
	}
	if p.Position("MSFT") != 3 {
		t.Errorf("clone mutation leaked into original positions: %d", p.Position("MSFT"))
	}
}

func TestPortfolio_HoldsAndCanAfford(t *testing.T) {
	p := NewPortfolio("dave", 100)
	p.AdjustPosition("TSLA", 5)

	if !p.Holds("TSLA", 5) {
		t.Error("expected Holds(TSLA, 5)")
	}
	if p.Holds("TSLA", 6) {
		t.Error("should not hold 6 units")
	}
	if p.Holds("NVDA", 1) {
		t.Error("should not hold unowned security")
	}
	if !p.CanAfford(decimal.NewFromInt(100)) {
		t.Error("expected CanAfford(100)")
	}
	if p.CanAfford(decimal.NewFromFloat(100.01)) {
		t.Error("should not afford 100.01")
	}
}
