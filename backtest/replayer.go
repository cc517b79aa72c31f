// Package backtest re-derives portfolio state from a stored tick
// history and checks it against the snapshots recorded at run time.
// The persisted log is the source of truth: if replaying its trades
// does not reproduce its own snapshots, the run is corrupt.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dewgong5/nwhacks2026/internal/domain"
	"github.com/dewgong5/nwhacks2026/internal/storage"
)

// Report summarizes one audit pass.
type Report struct {
	Ticks  int
	Orders int
	Trades int
	Drifts []string // human-readable mismatches, empty on a clean audit
}

// Clean reports whether the history reconciled exactly.
func (r *Report) Clean() bool {
	return len(r.Drifts) == 0
}

// Replayer reads tick logs from SQLite and audits them.
type Replayer struct {
	store *storage.TickStore
}

// NewReplayer opens the tick store at dbPath.
func NewReplayer(dbPath string) (*Replayer, error) {
	store, err := storage.NewTickStore(dbPath)
	if err != nil {
		return nil, err
	}
	return &Replayer{store: store}, nil
}

// Close releases the underlying store.
func (r *Replayer) Close() error {
	return r.store.Close()
}

// RunAudit replays the full stored history. The first tick's snapshots
// seed the ledger; every later tick's trades are re-settled against it
// and the result must match that tick's stored snapshots exactly.
// Cash and share totals must also stay constant across the whole run.
func (r *Replayer) RunAudit(ctx context.Context) (*Report, error) {
	logs, err := r.store.LoadTicks(ctx, 0)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("tick store is empty")
	}

	report := &Report{Ticks: len(logs)}
	for _, log := range logs {
		report.Orders += len(log.Orders)
		report.Trades += len(log.Trades)
	}

	for i := 1; i < len(logs); i++ {
		if logs[i].Tick != logs[i-1].Tick+1 {
			report.Drifts = append(report.Drifts,
				fmt.Sprintf("tick gap: %d followed by %d", logs[i-1].Tick, logs[i].Tick))
		}
	}

	ledger := cloneSnapshots(logs[0].Portfolios)
	baseCash, basePositions := totals(ledger)

	for _, log := range logs[1:] {
		for _, trade := range log.Trades {
			settle(ledger, trade)
		}
		report.Drifts = append(report.Drifts, diff(log.Tick, ledger, log.Portfolios)...)

		cash, positions := totals(log.Portfolios)
		if !cash.Equal(baseCash) {
			report.Drifts = append(report.Drifts,
				fmt.Sprintf("tick %d: total cash %s, expected %s", log.Tick, cash, baseCash))
		}
		for _, sec := range sortedKeys(basePositions) {
			if positions[sec] != basePositions[sec] {
				report.Drifts = append(report.Drifts,
					fmt.Sprintf("tick %d: %s total %d shares, expected %d", log.Tick, sec, positions[sec], basePositions[sec]))
			}
		}
	}

	slog.Info("Audit complete",
		slog.Int("ticks", report.Ticks),
		slog.Int("orders", report.Orders),
		slog.Int("trades", report.Trades),
		slog.Int("drifts", len(report.Drifts)))
	return report, nil
}

// settle mirrors live settlement: buyer pays and receives, seller is
// paid and delivers.
func settle(ledger map[string]*domain.Portfolio, trade domain.Trade) {
	value := trade.Value()
	if buyer, ok := ledger[trade.BuyerID]; ok {
		buyer.Debit(value)
		buyer.AdjustPosition(trade.SecurityID, trade.Size)
	}
	if seller, ok := ledger[trade.SellerID]; ok {
		seller.Credit(value)
		seller.AdjustPosition(trade.SecurityID, -trade.Size)
	}
}

// diff compares the replayed ledger to one tick's stored snapshots.
func diff(tick int64, ledger, stored map[string]*domain.Portfolio) []string {
	var drifts []string
	for _, id := range sortedPortfolioKeys(stored) {
		want := stored[id]
		got, ok := ledger[id]
		if !ok {
			drifts = append(drifts, fmt.Sprintf("tick %d: participant %s missing from replay", tick, id))
			continue
		}
		if !got.Cash.Equal(want.Cash) {
			drifts = append(drifts,
				fmt.Sprintf("tick %d: %s cash replayed %s, stored %s", tick, id, got.Cash, want.Cash))
		}
		for _, sec := range sortedKeys(want.Positions) {
			if got.Position(sec) != want.Positions[sec] {
				drifts = append(drifts,
					fmt.Sprintf("tick %d: %s position %s replayed %d, stored %d", tick, id, sec, got.Position(sec), want.Positions[sec]))
			}
		}
		for _, sec := range sortedKeys(got.Positions) {
			if _, ok := want.Positions[sec]; !ok {
				drifts = append(drifts,
					fmt.Sprintf("tick %d: %s holds %s in replay but not in snapshot", tick, id, sec))
			}
		}
	}
	return drifts
}

func cloneSnapshots(portfolios map[string]*domain.Portfolio) map[string]*domain.Portfolio {
	ledger := make(map[string]*domain.Portfolio, len(portfolios))
	for id, p := range portfolios {
		ledger[id] = p.Clone()
	}
	return ledger
}

func totals(portfolios map[string]*domain.Portfolio) (decimal.Decimal, map[string]int64) {
	cash := decimal.Zero
	positions := make(map[string]int64)
	for _, p := range portfolios {
		cash = cash.Add(p.Cash)
		for sec, qty := range p.Positions {
			positions[sec] += qty
		}
	}
	return cash, positions
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPortfolioKeys(m map[string]*domain.Portfolio) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
