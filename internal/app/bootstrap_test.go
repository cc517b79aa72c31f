package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dewgong5/nwhacks2026/internal/infra"
)

func scenario(t *testing.T) *infra.Config {
	t.Helper()
	cfg := &infra.Config{}
	cfg.App.Name = "test-scenario"
	cfg.Simulation.Ticks = 10
	cfg.Simulation.Seed = 42
	cfg.Market.PriceImpact = 0.001
	cfg.Market.Securities = []infra.SecurityConfig{
		{ID: "AAPL", InitialPrice: 100},
		{ID: "MSFT", InitialPrice: 200},
	}
	cfg.Agents = []infra.AgentConfig{
		{ID: "maker", Kind: "market_maker", Cash: 100000, Positions: map[string]int64{"AAPL": 500, "MSFT": 500}},
		{ID: "rando", Kind: "random", Cash: 10000},
		{ID: "trend", Kind: "momentum", Cash: 50000, Positions: map[string]int64{"AAPL": 50}},
		{ID: "whale", Kind: "holder", Cash: 100000, Positions: map[string]int64{"MSFT": 100}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("scenario should be valid: %v", err)
	}
	return cfg
}

func TestInitializeWith_BuildsGraph(t *testing.T) {
	b := NewBootstrap()
	if err := b.InitializeWith(context.Background(), scenario(t)); err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if got := b.Orchestrator.Securities(); len(got) != 2 {
		t.Fatalf("expected 2 securities, got %v", got)
	}
	if len(b.Strategies) != 4 {
		t.Fatalf("expected 4 strategies, got %d", len(b.Strategies))
	}
	for i, id := range []string{"maker", "rando", "trend", "whale"} {
		if b.Strategies[i].ID() != id {
			t.Errorf("strategy %d: expected %s, got %s", i, id, b.Strategies[i].ID())
		}
	}
	if b.News != nil {
		t.Error("news generator should be nil when disabled")
	}
	if b.Store != nil {
		t.Error("store should be nil when disabled")
	}
}

func TestInitializeWith_SeedsPositionsExceptHolders(t *testing.T) {
	b := NewBootstrap()
	if err := b.InitializeWith(context.Background(), scenario(t)); err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	maker, _ := b.Orchestrator.Portfolio("maker")
	if maker.Position("AAPL") != 500 {
		t.Errorf("maker should start with 500 AAPL, got %d", maker.Position("AAPL"))
	}

	// Holders accumulate toward their targets instead of starting
	// with them.
	whale, _ := b.Orchestrator.Portfolio("whale")
	if whale.Position("MSFT") != 0 {
		t.Errorf("holder should start flat, got %d", whale.Position("MSFT"))
	}
}

func TestInitializeWith_StoreAndNews(t *testing.T) {
	cfg := scenario(t)
	cfg.News.Enabled = true
	cfg.News.Probability = 0.5
	cfg.Storage.Enabled = true
	cfg.Storage.Path = filepath.Join(t.TempDir(), "nested", "ticks.db")

	b := NewBootstrap()
	ctx := context.Background()
	if err := b.InitializeWith(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if b.News == nil {
		t.Error("news generator should be built")
	}
	if b.Store == nil {
		t.Fatal("store should be built")
	}
	name, err := b.Store.GetMetadata(ctx, "scenario")
	if err != nil {
		t.Fatal(err)
	}
	if name != "test-scenario" {
		t.Errorf("metadata scenario = %q", name)
	}
	seed, err := b.Store.GetMetadata(ctx, "seed")
	if err != nil {
		t.Fatal(err)
	}
	if seed != "42" {
		t.Errorf("metadata seed = %q", seed)
	}
}

func TestInitializeWith_RejectsUnknownSeedSecurity(t *testing.T) {
	cfg := scenario(t)
	cfg.Agents[0].Positions = map[string]int64{"GHOST": 10}

	b := NewBootstrap()
	if err := b.InitializeWith(context.Background(), cfg); err == nil {
		t.Fatal("expected an error for seeding an unknown security")
	}
}

func TestDeriveSeed(t *testing.T) {
	if deriveSeed(42, 1) == deriveSeed(42, 2) {
		t.Error("streams should differ")
	}
	if deriveSeed(42, 1) != deriveSeed(42, 1) {
		t.Error("derivation should be stable")
	}
	if deriveSeed(0, 1) == 0 {
		t.Error("zero base should fall back to a clock seed")
	}
}
