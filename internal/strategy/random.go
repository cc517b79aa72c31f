package strategy

import (
	"math/rand"
	"sort"

	"github.com/dewgong5/nwhacks2026/internal/domain"
	"github.com/dewgong5/nwhacks2026/internal/news"
)

// RandomTrader is a retail day-trader persona: most ticks it picks a
// random security and flips a coin, buying a small clip just above the
// last price or selling part of a holding just below it.
type RandomTrader struct {
	id         string
	securities []string
	tradeProb  float64
	maxSize    int64
	rng        *rand.Rand
}

// NewRandomTrader creates a seeded random trader over the given
// securities.
func NewRandomTrader(id string, securities []string, seed int64) *RandomTrader {
	sorted := append([]string(nil), securities...)
	sort.Strings(sorted)
	return &RandomTrader{
		id:         id,
		securities: sorted,
		tradeProb:  0.6,
		maxSize:    10,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (s *RandomTrader) ID() string              { return s.id }
func (s *RandomTrader) Audience() news.Audience { return news.Retail }

func (s *RandomTrader) OnTick(view TickView) []OrderIntent {
	if len(s.securities) == 0 || s.rng.Float64() >= s.tradeProb {
		return nil
	}

	security := s.securities[s.rng.Intn(len(s.securities))]
	last, ok := view.Prices[security]
	if !ok || last <= 0 {
		return nil
	}
	size := 1 + s.rng.Int63n(s.maxSize)

	held := view.Portfolio.Position(security)
	if held > 0 && s.rng.Float64() < 0.5 {
		if size > held {
			size = held
		}
		// Cross the spread slightly to get filled.
		return []OrderIntent{{SecurityID: security, Side: domain.Sell, Price: last * 0.999, Size: size}}
	}
	return []OrderIntent{{SecurityID: security, Side: domain.Buy, Price: last * 1.001, Size: size}}
}
