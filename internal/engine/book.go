// Package engine implements the per-security matching core: a
// price-time priority continuous double auction over one tick, with a
// pressure-based price impact and uniform volatility noise.
package engine

import (
	"container/heap"
	"math/rand"
	"time"

	"github.com/dewgong5/nwhacks2026/internal/domain"
)

// Config holds the fixed per-security parameters of a book.
type Config struct {
	SecurityID   string
	InitialPrice float64
	PriceImpact  float64 // price move per unit of net pressure
	Volatility   float64 // half-width of the uniform noise draw
	Seed         int64   // 0 means seed from the clock
}

// OrderBook is the matching engine for a single security.
//
// The book is a per-tick micro-auction: heaps are rebuilt from the
// pending buffer on every Execute and unmatched entries do not carry
// over to the next tick. Sequence numbers and heaps live inside the
// instance; there is no package-level state.
type OrderBook struct {
	securityID  string
	lastPrice   float64
	priceImpact float64
	volatility  float64

	seq     uint64
	bids    bidQueue
	asks    askQueue
	pending []domain.Order

	rng *rand.Rand
}

// NewOrderBook creates a book for one security. The random source is
// owned by the book so fixed-seed runs are reproducible.
func NewOrderBook(cfg Config) *OrderBook {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	initial := cfg.InitialPrice
	if initial <= 0 {
		initial = 100.0
	}
	return &OrderBook{
		securityID:  cfg.SecurityID,
		lastPrice:   initial,
		priceImpact: cfg.PriceImpact,
		volatility:  cfg.Volatility,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// SecurityID returns the security this book trades.
func (b *OrderBook) SecurityID() string {
	return b.securityID
}

// Submit queues an order for execution this tick. Validation is the
// orchestrator's job; the book only buffers.
func (b *OrderBook) Submit(order domain.Order) {
	b.pending = append(b.pending, order)
}

// Execute matches all pending orders and returns the executed trades.
// Called at most once per tick by the orchestrator.
func (b *OrderBook) Execute() []domain.Trade {
	// Independent micro-auction: residue from the previous tick is
	// dropped before the new buffer is inserted.
	b.bids = b.bids[:0]
	b.asks = b.asks[:0]

	netPressure := int64(0)
	for _, order := range b.pending {
		if order.IsBuy() {
			netPressure += order.Size
		} else {
			netPressure -= order.Size
		}
	}

	for _, order := range b.pending {
		b.seq++
		entry := bookEntry{
			price:         order.Price,
			seq:           b.seq,
			size:          order.Size,
			participantID: order.ParticipantID,
			tick:          order.Tick,
		}
		if order.IsBuy() {
			heap.Push(&b.bids, entry)
		} else {
			heap.Push(&b.asks, entry)
		}
	}
	b.pending = b.pending[:0]

	trades := b.match()

	b.lastPrice = applyImpact(b.lastPrice, netPressure, b.priceImpact)
	b.lastPrice = applyNoise(b.lastPrice, b.volatility, b.rng)

	return trades
}

// match walks the two heaps while the spread crosses, honoring the
// resting (earlier-sequence) order's price.
func (b *OrderBook) match() []domain.Trade {
	var trades []domain.Trade

	for b.bids.Len() > 0 && b.asks.Len() > 0 {
		if b.bids[0].price < b.asks[0].price {
			break
		}

		bid := heap.Pop(&b.bids).(bookEntry)
		ask := heap.Pop(&b.asks).(bookEntry)

		// Maker sets the price: whichever side arrived first.
		price := ask.price
		if bid.seq < ask.seq {
			price = bid.price
		}

		size := bid.size
		if ask.size < size {
			size = ask.size
		}

		trades = append(trades, domain.Trade{
			BuyerID:    bid.participantID,
			SellerID:   ask.participantID,
			SecurityID: b.securityID,
			Price:      price,
			Size:       size,
			Tick:       bid.tick,
		})
		b.lastPrice = price

		if bid.size > size {
			bid.size -= size
			heap.Push(&b.bids, bid)
		}
		if ask.size > size {
			ask.size -= size
			heap.Push(&b.asks, ask)
		}
	}

	return trades
}

// LastPrice returns the most recent post-tick price; before any tick
// it is the configured initial price.
func (b *OrderBook) LastPrice() float64 {
	return b.lastPrice
}

// BestBid returns the highest unmatched bid left by the last Execute.
func (b *OrderBook) BestBid() (float64, bool) {
	if b.bids.Len() == 0 {
		return 0, false
	}
	return b.bids[0].price, true
}

// BestAsk returns the lowest unmatched ask left by the last Execute.
func (b *OrderBook) BestAsk() (float64, bool) {
	if b.asks.Len() == 0 {
		return 0, false
	}
	return b.asks[0].price, true
}

// Spread returns ask minus bid for the unmatched residue, if both
// sides are present.
func (b *OrderBook) Spread() (float64, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

// Depth returns the total unmatched size on each side.
func (b *OrderBook) Depth() (bidSize, askSize int64) {
	for _, e := range b.bids {
		bidSize += e.size
	}
	for _, e := range b.asks {
		askSize += e.size
	}
	return bidSize, askSize
}
