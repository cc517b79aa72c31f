package strategy

import (
	"sort"

	"github.com/dewgong5/nwhacks2026/internal/domain"
	"github.com/dewgong5/nwhacks2026/internal/news"
)

// MomentumTrader buys securities trading above their rolling average
// and sells ones trading below it, with visible news tilting the
// signal by sentiment x magnitude. Stateful and deterministic; price
// history lives in fixed-size ring buffers.
type MomentumTrader struct {
	id        string
	window    int
	threshold float64
	tradeSize int64

	books map[string]*priceRing
}

// priceRing is a fixed-size rolling window with a running sum.
type priceRing struct {
	prices []float64
	head   int
	count  int
	sum    float64
}

func newPriceRing(window int) *priceRing {
	return &priceRing{prices: make([]float64, window)}
}

func (r *priceRing) push(price float64) {
	if r.count == len(r.prices) {
		r.sum -= r.prices[r.head]
	}
	r.prices[r.head] = price
	r.sum += price
	r.head = (r.head + 1) % len(r.prices)
	if r.count < len(r.prices) {
		r.count++
	}
}

func (r *priceRing) full() bool { return r.count == len(r.prices) }

func (r *priceRing) mean() float64 { return r.sum / float64(r.count) }

// NewMomentumTrader creates a momentum trader with the given rolling
// window length.
func NewMomentumTrader(id string, window int) *MomentumTrader {
	if window < 2 {
		panic("MomentumTrader: window must be at least 2")
	}
	return &MomentumTrader{
		id:        id,
		window:    window,
		threshold: 0.01,
		tradeSize: 5,
		books:     make(map[string]*priceRing),
	}
}

func (s *MomentumTrader) ID() string              { return s.id }
func (s *MomentumTrader) Audience() news.Audience { return news.Fundamental }

// Seed preloads price history (e.g. from the universe CSV) so the
// trader can act from the first tick.
func (s *MomentumTrader) Seed(security string, history []float64) {
	ring := s.ring(security)
	for _, price := range history {
		ring.push(price)
	}
}

func (s *MomentumTrader) ring(security string) *priceRing {
	ring, ok := s.books[security]
	if !ok {
		ring = newPriceRing(s.window)
		s.books[security] = ring
	}
	return ring
}

func (s *MomentumTrader) OnTick(view TickView) []OrderIntent {
	bias := make(map[string]float64)
	for _, ev := range view.News {
		bias[ev.SecurityID] += ev.Sentiment * ev.Magnitude
	}

	// Map iteration order is random; submission order matters for
	// time priority, so walk securities sorted.
	securities := make([]string, 0, len(view.Prices))
	for security := range view.Prices {
		securities = append(securities, security)
	}
	sort.Strings(securities)

	var intents []OrderIntent
	for _, security := range securities {
		last := view.Prices[security]
		ring := s.ring(security)
		ring.push(last)
		if !ring.full() {
			continue
		}

		signal := (last-ring.mean())/ring.mean() + bias[security]

		switch {
		case signal > s.threshold:
			intents = append(intents, OrderIntent{
				SecurityID: security,
				Side:       domain.Buy,
				Price:      last * 1.002,
				Size:       s.tradeSize,
			})
		case signal < -s.threshold:
			held := view.Portfolio.Position(security)
			if held <= 0 {
				continue
			}
			size := s.tradeSize
			if held < size {
				size = held
			}
			intents = append(intents, OrderIntent{
				SecurityID: security,
				Side:       domain.Sell,
				Price:      last * 0.998,
				Size:       size,
			})
		}
	}
	return intents
}
