package strategy

import (
	"sort"

	"github.com/dewgong5/nwhacks2026/internal/domain"
	"github.com/dewgong5/nwhacks2026/internal/news"
)

// BuyAndHold accumulates target positions and then sits on them. The
// retail holder persona: it keeps bidding each tick until every
// target is reached and never sells.
type BuyAndHold struct {
	id      string
	targets map[string]int64
}

// NewBuyAndHold creates a holder with per-security target quantities.
func NewBuyAndHold(id string, targets map[string]int64) *BuyAndHold {
	copied := make(map[string]int64, len(targets))
	for sec, qty := range targets {
		copied[sec] = qty
	}
	return &BuyAndHold{id: id, targets: copied}
}

func (s *BuyAndHold) ID() string              { return s.id }
func (s *BuyAndHold) Audience() news.Audience { return news.Retail }

func (s *BuyAndHold) OnTick(view TickView) []OrderIntent {
	securities := make([]string, 0, len(s.targets))
	for security := range s.targets {
		securities = append(securities, security)
	}
	sort.Strings(securities)

	var intents []OrderIntent
	for _, security := range securities {
		missing := s.targets[security] - view.Portfolio.Position(security)
		if missing <= 0 {
			continue
		}
		last, ok := view.Prices[security]
		if !ok || last <= 0 {
			continue
		}
		intents = append(intents, OrderIntent{
			SecurityID: security,
			Side:       domain.Buy,
			Price:      last * 1.001,
			Size:       missing,
		})
	}
	return intents
}
