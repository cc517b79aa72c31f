package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dewgong5/nwhacks2026/backtest"
	"github.com/dewgong5/nwhacks2026/internal/infra"
)

func main() {
	defaultPath := os.Getenv("SIM_DB_PATH")
	if defaultPath == "" {
		defaultPath = filepath.Join(infra.GetWorkspaceDir(), "data", "ticks.db")
	}
	dbPath := flag.String("db", defaultPath, "path to the tick database")
	flag.Parse()

	replayer, err := backtest.NewReplayer(*dbPath)
	if err != nil {
		slog.Error("❌ Failed to open tick store", slog.String("path", *dbPath), slog.Any("error", err))
		os.Exit(1)
	}
	defer replayer.Close()

	report, err := replayer.RunAudit(context.Background())
	if err != nil {
		slog.Error("❌ Audit failed", slog.Any("error", err))
		os.Exit(1)
	}

	if !report.Clean() {
		for _, drift := range report.Drifts {
			fmt.Fprintln(os.Stderr, "DRIFT:", drift)
		}
		slog.Error("❌ History does not reconcile", slog.Int("drifts", len(report.Drifts)))
		os.Exit(1)
	}

	slog.Info("✅ History reconciles",
		slog.Int("ticks", report.Ticks),
		slog.Int("orders", report.Orders),
		slog.Int("trades", report.Trades))
}
