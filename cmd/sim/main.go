package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dewgong5/nwhacks2026/internal/app"
	"github.com/dewgong5/nwhacks2026/internal/news"
	"github.com/dewgong5/nwhacks2026/internal/server"
	"github.com/dewgong5/nwhacks2026/internal/strategy"
)

func main() {
	// 1. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(ctx); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	cfg := bootstrap.Config
	orch := bootstrap.Orchestrator

	// 3. Presentation layer (optional)
	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.New(orch, cfg.Server.CORSOrigin)
		httpSrv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: srv.Routes()}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server failed", slog.Any("error", err))
			}
		}()
		defer httpSrv.Shutdown(context.Background())
		slog.Info("✅ Server listening", slog.String("addr", cfg.Server.ListenAddr))
	}

	// 4. The Tick Loop
	interval := time.Duration(cfg.Simulation.TickIntervalMS) * time.Millisecond
	var feed []news.Event

loop:
	for i := 0; i < cfg.Simulation.Ticks; i++ {
		select {
		case <-ctx.Done():
			break loop
		default:
		}

		tick := orch.Tick()

		if bootstrap.News != nil {
			if ev := bootstrap.News.Generate(tick); ev != nil {
				feed = append(feed, *ev)
				slog.Info("📰 News", slog.String("headline", ev.Headline), slog.Int64("tick", tick))
			}
		}

		prices := orch.Snapshot()
		for _, strat := range bootstrap.Strategies {
			portfolio, ok := orch.Portfolio(strat.ID())
			if !ok {
				continue
			}
			view := strategy.TickView{
				Tick:      tick,
				Prices:    prices,
				Portfolio: portfolio,
				News:      freshNews(feed, strat.Audience(), tick),
			}
			for _, intent := range strat.OnTick(view) {
				orch.SubmitOrder(strat.ID(), intent.SecurityID, intent.Side, intent.Price, intent.Size)
			}
		}

		log := orch.RunTick()

		if bootstrap.Store != nil {
			if err := bootstrap.Store.SaveTick(ctx, log); err != nil {
				slog.Error("❌ Failed to persist tick", slog.Int64("tick", log.Tick), slog.Any("error", err))
				os.Exit(1)
			}
		}
		if srv != nil {
			srv.Publish(log)
		}

		if interval > 0 {
			select {
			case <-ctx.Done():
				break loop
			case <-time.After(interval):
			}
		}
	}

	slog.Info("✨ Simulation complete", slog.Int64("ticks", orch.Tick()))

	// Keep serving snapshots until interrupted so clients can inspect
	// the final state.
	if srv != nil && ctx.Err() == nil {
		slog.Info("Press Ctrl+C to exit")
		<-ctx.Done()
	}
}

// freshNews returns the events that become visible to the audience at
// exactly this tick, so each agent reacts to a story once, delayed by
// its audience class.
func freshNews(feed []news.Event, audience news.Audience, tick int64) []news.Event {
	var visible []news.Event
	for _, ev := range feed {
		if ev.VisibleTo(audience, tick) && !ev.VisibleTo(audience, tick-1) {
			visible = append(visible, ev)
		}
	}
	return visible
}
