package strategy

import (
	"sort"

	"github.com/dewgong5/nwhacks2026/internal/domain"
	"github.com/dewgong5/nwhacks2026/internal/news"
)

// MarketMaker quotes both sides of every security it can, a half
// spread away from the last price. It provides the resting liquidity
// the other personas trade against.
type MarketMaker struct {
	id         string
	halfSpread float64
	quoteSize  int64
}

// NewMarketMaker creates a maker quoting quoteSize units halfSpread
// (as a fraction of the last price) away from it on each side.
func NewMarketMaker(id string, halfSpread float64, quoteSize int64) *MarketMaker {
	return &MarketMaker{id: id, halfSpread: halfSpread, quoteSize: quoteSize}
}

func (s *MarketMaker) ID() string              { return s.id }
func (s *MarketMaker) Audience() news.Audience { return news.Quant }

func (s *MarketMaker) OnTick(view TickView) []OrderIntent {
	securities := make([]string, 0, len(view.Prices))
	for security := range view.Prices {
		securities = append(securities, security)
	}
	sort.Strings(securities)

	var intents []OrderIntent
	for _, security := range securities {
		last := view.Prices[security]
		if last <= 0 {
			continue
		}

		intents = append(intents, OrderIntent{
			SecurityID: security,
			Side:       domain.Buy,
			Price:      last * (1 - s.halfSpread),
			Size:       s.quoteSize,
		})

		// Quote the offer only from inventory; the orchestrator
		// forbids short selling anyway.
		held := view.Portfolio.Position(security)
		if held <= 0 {
			continue
		}
		size := s.quoteSize
		if held < size {
			size = held
		}
		intents = append(intents, OrderIntent{
			SecurityID: security,
			Side:       domain.Sell,
			Price:      last * (1 + s.halfSpread),
			Size:       size,
		})
	}
	return intents
}
