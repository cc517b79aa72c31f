// Package app wires the scenario together: config, logging, storage,
// the matching engines, and the agent roster.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/dewgong5/nwhacks2026/internal/engine"
	"github.com/dewgong5/nwhacks2026/internal/infra"
	"github.com/dewgong5/nwhacks2026/internal/news"
	"github.com/dewgong5/nwhacks2026/internal/sim"
	"github.com/dewgong5/nwhacks2026/internal/storage"
	"github.com/dewgong5/nwhacks2026/internal/strategy"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config       *infra.Config
	Orchestrator *sim.Orchestrator
	Strategies   []strategy.Strategy
	News         *news.Generator    // nil when news is disabled
	Store        *storage.TickStore // nil when storage is disabled

	// histories keeps the universe price history per security for
	// seeding momentum traders.
	histories map[string][]float64
}

// NewBootstrap creates an empty Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{histories: make(map[string][]float64)}
}

// Initialize loads the scenario and builds the full simulation graph.
func (b *Bootstrap) Initialize(ctx context.Context) error {
	slog.Info("🚀 Bootstrapping market simulation...")

	// 1. Load Config (Dynamic Path Resolution)
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err // Let main handle the error
	}

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))

	return b.InitializeWith(ctx, cfg)
}

// InitializeWith builds the simulation graph from an already-loaded
// scenario.
func (b *Bootstrap) InitializeWith(ctx context.Context, cfg *infra.Config) error {
	b.Config = cfg

	// 1. Market: one matching engine per security
	if err := b.buildMarket(); err != nil {
		return err
	}

	// 2. Agents: portfolios plus their decision logic
	if err := b.buildAgents(); err != nil {
		return err
	}

	// 3. News feed
	if cfg.News.Enabled {
		b.News = news.NewGenerator(b.Orchestrator.Securities(), cfg.News.Probability, deriveSeed(cfg.Simulation.Seed, 9001))
	}

	// 4. Tick store (Single-Writer WAL DB)
	if cfg.Storage.Enabled {
		if err := b.openStore(ctx); err != nil {
			return err
		}
	}

	slog.Info("✅ Scenario ready",
		slog.Int("securities", len(b.Orchestrator.Securities())),
		slog.Int("agents", len(b.Strategies)),
		slog.Int("ticks", cfg.Simulation.Ticks))
	return nil
}

// buildMarket registers a book per security, from the inline scenario
// list and/or the universe CSV.
func (b *Bootstrap) buildMarket() error {
	cfg := b.Config
	b.Orchestrator = sim.New()

	register := func(i int, id string, price float64) error {
		book := engine.NewOrderBook(engine.Config{
			SecurityID:   id,
			InitialPrice: price,
			PriceImpact:  cfg.Market.PriceImpact,
			Volatility:   cfg.Market.Volatility,
			Seed:         deriveSeed(cfg.Simulation.Seed, int64(i)+1),
		})
		return b.Orchestrator.RegisterSecurity(id, book)
	}

	n := 0
	for _, sec := range cfg.Market.Securities {
		if err := register(n, sec.ID, sec.InitialPrice); err != nil {
			return err
		}
		n++
	}

	if cfg.Market.UniverseCSV != "" {
		universe, err := infra.LoadUniverse(cfg.Market.UniverseCSV)
		if err != nil {
			return fmt.Errorf("failed to load universe: %w", err)
		}
		for _, info := range universe {
			if err := register(n, info.Ticker, info.Price); err != nil {
				return err
			}
			b.histories[info.Ticker] = info.History
			n++
		}
	}
	return nil
}

// buildAgents registers each agent's portfolio and constructs its
// strategy. Seeds derive from the scenario seed so runs reproduce.
func (b *Bootstrap) buildAgents() error {
	cfg := b.Config
	securities := b.Orchestrator.Securities()

	for i, agent := range cfg.Agents {
		if err := b.Orchestrator.RegisterParticipant(agent.ID, agent.Cash); err != nil {
			return err
		}

		// Holders treat configured positions as accumulation targets
		// and buy in at market; everyone else starts holding them.
		if agent.Kind != "holder" {
			for _, sec := range sortedKeys(agent.Positions) {
				if !b.Orchestrator.SeedPosition(agent.ID, sec, agent.Positions[sec]) {
					return fmt.Errorf("agent %s: cannot seed unknown security %q", agent.ID, sec)
				}
			}
		}

		seed := deriveSeed(cfg.Simulation.Seed, 100+int64(i))
		var strat strategy.Strategy
		switch agent.Kind {
		case "random":
			strat = strategy.NewRandomTrader(agent.ID, securities, seed)
		case "momentum":
			trader := strategy.NewMomentumTrader(agent.ID, 5)
			for _, sec := range securities {
				if history := b.histories[sec]; len(history) > 0 {
					trader.Seed(sec, history)
				}
			}
			strat = trader
		case "market_maker":
			strat = strategy.NewMarketMaker(agent.ID, 0.01, 10)
		case "holder":
			strat = strategy.NewBuyAndHold(agent.ID, agent.Positions)
		default:
			return fmt.Errorf("agent %s: unknown kind %q", agent.ID, agent.Kind)
		}
		b.Strategies = append(b.Strategies, strat)
	}
	return nil
}

// openStore initializes the tick store under the workspace data dir
// (or the explicit configured path) and records run metadata.
func (b *Bootstrap) openStore(ctx context.Context) error {
	dbPath := b.Config.Storage.Path
	if dbPath == "" {
		dataDir := filepath.Join(infra.GetWorkspaceDir(), "data")
		if err := infra.EnsureDir(dataDir); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
		dbPath = filepath.Join(dataDir, "ticks.db")
	} else if dir := filepath.Dir(dbPath); dir != "." {
		if err := infra.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	store, err := storage.NewTickStore(dbPath)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ TickStore initialized (WAL-mode)", "path", dbPath)

	now := time.Now().UnixMicro()
	if err := store.UpsertMetadata(ctx, "scenario", b.Config.App.Name, now); err != nil {
		return err
	}
	return store.UpsertMetadata(ctx, "seed", strconv.FormatInt(b.Config.Simulation.Seed, 10), now)
}

// Close releases held resources.
func (b *Bootstrap) Close() error {
	if b.Store != nil {
		return b.Store.Close()
	}
	return nil
}

// deriveSeed spreads one scenario seed into independent streams. A
// zero scenario seed means a non-reproducible run, so each stream
// falls back to the clock.
func deriveSeed(base, stream int64) int64 {
	if base == 0 {
		return time.Now().UnixNano() + stream
	}
	return base*1_000_003 + stream
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
