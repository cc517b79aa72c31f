package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dewgong5/nwhacks2026/internal/domain"
)

func testLog(tick int64) domain.TickLog {
	p := domain.NewPortfolio("alice", 1000)
	p.AdjustPosition("AAPL", 5)
	return domain.TickLog{
		Tick: tick,
		Orders: []domain.Order{
			{ParticipantID: "alice", SecurityID: "AAPL", Side: domain.Buy, Price: 100.5, Size: 5, Tick: tick},
		},
		Trades: []domain.Trade{
			{BuyerID: "alice", SellerID: "bob", SecurityID: "AAPL", Price: 100.5, Size: 5, Tick: tick},
		},
		LastPrices: map[string]float64{"AAPL": 100.5},
		Portfolios: map[string]*domain.Portfolio{"alice": p},
	}
}

func TestTickStore_SaveAndLoad(t *testing.T) {
	store, err := NewTickStore(t.TempDir() + "/ticks.db")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if err := store.SaveTick(ctx, testLog(0)); err != nil {
		t.Fatalf("failed to save tick 0: %v", err)
	}
	if err := store.SaveTick(ctx, testLog(1)); err != nil {
		t.Fatalf("failed to save tick 1: %v", err)
	}

	logs, err := store.LoadTicks(ctx, 0)
	if err != nil {
		t.Fatalf("failed to load ticks: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(logs))
	}

	got := logs[0]
	if got.Tick != 0 {
		t.Errorf("tick mismatch: %d", got.Tick)
	}
	if len(got.Trades) != 1 || got.Trades[0].Price != 100.5 {
		t.Errorf("trade payload mismatch: %+v", got.Trades)
	}
	if got.LastPrices["AAPL"] != 100.5 {
		t.Errorf("price payload mismatch: %v", got.LastPrices)
	}
	alice := got.Portfolios["alice"]
	if alice == nil || !alice.Cash.Equal(decimal.NewFromInt(1000)) || alice.Position("AAPL") != 5 {
		t.Errorf("portfolio payload mismatch: %+v", alice)
	}
}

func TestTickStore_LoadFromOffset(t *testing.T) {
	store, err := NewTickStore(t.TempDir() + "/ticks.db")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for tick := int64(0); tick < 5; tick++ {
		if err := store.SaveTick(ctx, testLog(tick)); err != nil {
			t.Fatalf("failed to save tick %d: %v", tick, err)
		}
	}

	logs, err := store.LoadTicks(ctx, 3)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(logs) != 2 || logs[0].Tick != 3 || logs[1].Tick != 4 {
		t.Errorf("offset load wrong: %+v", logs)
	}
}

func TestTickStore_LastTick(t *testing.T) {
	store, err := NewTickStore(t.TempDir() + "/ticks.db")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	last, err := store.LastTick(ctx)
	if err != nil {
		t.Fatalf("LastTick failed: %v", err)
	}
	if last != -1 {
		t.Errorf("expected -1 for empty store, got %d", last)
	}

	if err := store.SaveTick(ctx, testLog(7)); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	last, err = store.LastTick(ctx)
	if err != nil {
		t.Fatalf("LastTick failed: %v", err)
	}
	if last != 7 {
		t.Errorf("expected 7, got %d", last)
	}
}

func TestTickStore_DuplicateTickFails(t *testing.T) {
	store, err := NewTickStore(t.TempDir() + "/ticks.db")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveTick(ctx, testLog(0)); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.SaveTick(ctx, testLog(0)); err == nil {
		t.Error("expected constraint error on duplicate tick")
	}
}

func TestTickStore_Metadata(t *testing.T) {
	store, err := NewTickStore(t.TempDir() + "/ticks.db")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if val, err := store.GetMetadata(ctx, "seed"); err != nil || val != "" {
		t.Errorf("expected empty value, got %q err %v", val, err)
	}

	if err := store.UpsertMetadata(ctx, "seed", "42", 1); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.UpsertMetadata(ctx, "seed", "43", 2); err != nil {
		t.Fatalf("upsert overwrite failed: %v", err)
	}

	val, err := store.GetMetadata(ctx, "seed")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if val != "43" {
		t.Errorf("expected 43, got %q", val)
	}
}
