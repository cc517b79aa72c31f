package strategy

import (
	"github.com/dewgong5/nwhacks2026/internal/domain"
	"github.com/dewgong5/nwhacks2026/internal/news"
)

// TickView is everything a strategy may observe before deciding:
// current prices, its own portfolio snapshot, and the news events
// visible to its audience this tick.
type TickView struct {
	Tick      int64
	Prices    map[string]float64
	Portfolio *domain.Portfolio
	News      []news.Event
}

// OrderIntent is a strategy's request to trade; the driver submits it
// through the orchestrator, which may still reject it.
type OrderIntent struct {
	SecurityID string
	Side       domain.Side
	Price      float64
	Size       int64
}

// Strategy is the decision logic of one simulated participant. All
// implementations are deterministic under a fixed seed.
type Strategy interface {
	// ID returns the participant this strategy trades as.
	ID() string

	// Audience determines which news the strategy sees and when.
	Audience() news.Audience

	// OnTick inspects the view and returns zero or more order intents.
	OnTick(view TickView) []OrderIntent
}
