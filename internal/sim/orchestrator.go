// Package sim contains the tick orchestrator: the central controller
// that validates and buffers participant orders, routes them to each
// security's matching engine, settles the resulting trades against
// participant portfolios, and records an immutable per-tick log.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/dewgong5/nwhacks2026/internal/domain"
)

// ErrDuplicateRegistration is returned when a security or participant
// id is registered twice. Fatal to scenario setup.
var ErrDuplicateRegistration = errors.New("duplicate registration")

// MarketCore is the surface each security's matching engine exposes to
// the orchestrator.
type MarketCore interface {
	Submit(order domain.Order)
	Execute() []domain.Trade
	LastPrice() float64
}

// Orchestrator owns the set of matching engines and the portfolio
// ledger. All order submission for a tick must complete before RunTick
// is invoked; RunTick itself is not re-entrant.
type Orchestrator struct {
	tick int64

	books     map[string]MarketCore
	bookOrder []string // registration order drives execution + settlement

	portfolios     map[string]*domain.Portfolio
	portfolioOrder []string

	pending []domain.Order
	logs    []domain.TickLog

	inTick atomic.Bool
	mu     sync.RWMutex // external reads (server, agents) vs tick mutation
}

// New creates an empty orchestrator.
func New() *Orchestrator {
	return &Orchestrator{
		books:      make(map[string]MarketCore),
		portfolios: make(map[string]*domain.Portfolio),
	}
}

// RegisterSecurity adds a matching engine for a security id. Must be
// called before any order referencing that id.
func (o *Orchestrator) RegisterSecurity(id string, core MarketCore) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.books[id]; ok {
		return fmt.Errorf("security %q: %w", id, ErrDuplicateRegistration)
	}
	o.books[id] = core
	o.bookOrder = append(o.bookOrder, id)
	return nil
}

// RegisterParticipant creates a portfolio with the given starting cash
// and no positions.
func (o *Orchestrator) RegisterParticipant(id string, initialCash float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.portfolios[id]; ok {
		return fmt.Errorf("participant %q: %w", id, ErrDuplicateRegistration)
	}
	o.portfolios[id] = domain.NewPortfolio(id, initialCash)
	o.portfolioOrder = append(o.portfolioOrder, id)
	return nil
}

// SeedPosition grants a participant an initial holding. Scenario setup
// only; returns false if the participant or security is unknown.
func (o *Orchestrator) SeedPosition(participantID, securityID string, size int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, ok := o.portfolios[participantID]
	if !ok {
		return false
	}
	if _, ok := o.books[securityID]; !ok {
		return false
	}
	p.AdjustPosition(securityID, size)
	return true
}

// SubmitOrder validates synchronously and buffers the order for the
// current tick. Rejected orders return false and are not queued; the
// book is never touched here.
func (o *Orchestrator) SubmitOrder(participantID, securityID string, side domain.Side, price float64, size int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.portfolios[participantID]; !ok {
		return false
	}
	if _, ok := o.books[securityID]; !ok {
		return false
	}
	if price <= 0 || size <= 0 {
		return false
	}
	if side != domain.Buy && side != domain.Sell {
		return false
	}

	order := domain.Order{
		ParticipantID: participantID,
		SecurityID:    securityID,
		Side:          side,
		Price:         price,
		Size:          size,
		Tick:          o.tick,
	}
	if !o.validate(order) {
		return false
	}

	o.pending = append(o.pending, order)
	return true
}

// validate checks an order against the participant's current ledger.
// BUY checks cash against the limit price, a conservative pre-check:
// the order may settle cheaper, but cash can never go negative.
func (o *Orchestrator) validate(order domain.Order) bool {
	p, ok := o.portfolios[order.ParticipantID]
	if !ok {
		return false
	}
	if order.IsBuy() {
		return p.CanAfford(order.LimitValue())
	}
	return p.Holds(order.SecurityID, order.Size)
}

// reserveAndValidate checks an order against the ledger minus what
// earlier orders in this tick's buffer already committed, and records
// the order's own commitment when it passes.
func (o *Orchestrator) reserveAndValidate(order domain.Order, reservedCash map[string]decimal.Decimal, reservedShares map[string]int64) bool {
	p, ok := o.portfolios[order.ParticipantID]
	if !ok {
		return false
	}
	if order.IsBuy() {
		need := order.LimitValue()
		available := p.Cash.Sub(reservedCash[order.ParticipantID])
		if available.LessThan(need) {
			return false
		}
		reservedCash[order.ParticipantID] = reservedCash[order.ParticipantID].Add(need)
		return true
	}
	key := order.ParticipantID + "\x00" + order.SecurityID
	if p.Position(order.SecurityID)-reservedShares[key] < order.Size {
		return false
	}
	reservedShares[key] += order.Size
	return true
}

// RunTick processes all buffered orders and advances the simulation by
// one tick. Calling it while a tick is already in flight is a contract
// violation and panics.
func (o *Orchestrator) RunTick() domain.TickLog {
	if !o.inTick.CompareAndSwap(false, true) {
		panic("RUN_TICK_REENTRANT: run_tick called while a tick is in flight")
	}
	defer o.inTick.Store(false)

	o.mu.Lock()
	defer o.mu.Unlock()

	// Re-validate: state may have shifted since submission, e.g. one
	// participant queueing conflicting orders for more than it owns.
	// Unlike the submit-time check, this pass tracks cumulative
	// commitments so the combined buffer cannot oversell a position or
	// overspend cash. Invalid orders are dropped from execution but
	// stay in the log.
	reservedCash := make(map[string]decimal.Decimal)
	reservedShares := make(map[string]int64) // participant+security key
	for _, order := range o.pending {
		if o.reserveAndValidate(order, reservedCash, reservedShares) {
			o.books[order.SecurityID].Submit(order)
		}
	}

	trades := o.executeBooks()

	for _, trade := range trades {
		o.settle(trade)
	}

	lastPrices := make(map[string]float64, len(o.bookOrder))
	for _, id := range o.bookOrder {
		lastPrices[id] = o.books[id].LastPrice()
	}
	snapshots := make(map[string]*domain.Portfolio, len(o.portfolios))
	for id, p := range o.portfolios {
		snapshots[id] = p.Clone()
	}

	log := domain.TickLog{
		Tick:       o.tick,
		Orders:     append([]domain.Order(nil), o.pending...),
		Trades:     trades,
		LastPrices: lastPrices,
		Portfolios: snapshots,
	}
	o.logs = append(o.logs, log)

	slog.Debug("tick complete",
		slog.Int64("tick", o.tick),
		slog.Int("orders", len(log.Orders)),
		slog.Int("trades", len(log.Trades)))

	o.pending = nil
	o.tick++

	return log
}

// executeBooks runs every engine's match phase, one goroutine per
// security. Each engine only touches its own book, so matching is
// embarrassingly parallel; trades are collected into registration-order
// slots so the settlement sequence stays deterministic.
func (o *Orchestrator) executeBooks() []domain.Trade {
	results := make([][]domain.Trade, len(o.bookOrder))

	var wg sync.WaitGroup
	for i, id := range o.bookOrder {
		wg.Add(1)
		go func(slot int, core MarketCore) {
			defer wg.Done()
			results[slot] = core.Execute()
		}(i, o.books[id])
	}
	wg.Wait()

	var trades []domain.Trade
	for _, r := range results {
		trades = append(trades, r...)
	}
	return trades
}

// settle converts one matched trade into cash and position transfers.
// Single-writer: runs strictly after all engines finish, in trade
// production order.
func (o *Orchestrator) settle(trade domain.Trade) {
	value := trade.Value()

	buyer := o.portfolios[trade.BuyerID]
	buyer.Debit(value)
	buyer.AdjustPosition(trade.SecurityID, trade.Size)

	seller := o.portfolios[trade.SellerID]
	seller.Credit(value)
	seller.AdjustPosition(trade.SecurityID, -trade.Size)
}

// Snapshot returns the current last price of every security.
func (o *Orchestrator) Snapshot() map[string]float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()

	prices := make(map[string]float64, len(o.bookOrder))
	for _, id := range o.bookOrder {
		prices[id] = o.books[id].LastPrice()
	}
	return prices
}

// Portfolio returns a deep copy of a participant's portfolio, or false
// if the id is unknown.
func (o *Orchestrator) Portfolio(participantID string) (*domain.Portfolio, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	p, ok := o.portfolios[participantID]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Logs returns the full replay history in tick order.
func (o *Orchestrator) Logs() []domain.TickLog {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]domain.TickLog(nil), o.logs...)
}

// Tick returns the index of the next tick to run.
func (o *Orchestrator) Tick() int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.tick
}

// Securities lists registered security ids in registration order.
func (o *Orchestrator) Securities() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.bookOrder...)
}

// Participants lists registered participant ids in registration order.
func (o *Orchestrator) Participants() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.portfolioOrder...)
}
