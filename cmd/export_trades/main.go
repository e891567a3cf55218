package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"tradeSync/config"
	"tradeSync/internal/adapters/logger"
	"tradeSync/internal/app"
	"tradeSync/internal/reconciler"
	"tradeSync/internal/report"
	"tradeSync/internal/utils"
)

func main() {
	out := flag.String("out", "", "CSV output path (default data/trades_<timestamp>.csv)")
	pageSize := flag.Int("page-size", 0, "trades per page, 0 exports everything")
	page := flag.Int("page", 0, "zero-based page index, used with -page-size")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel})

	// 3. Initialize Engine
	engine, err := app.NewEngine(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize sync engine")
		log.Fatalf("FATAL: Failed to initialize sync engine: %v", err)
	}
	defer engine.Close()

	if err := engine.Reconciler.RefreshNow(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Error fetching trades")
		engine.Close()
		log.Fatalf("Error fetching trades: %v", err)
	}
	snapshot := engine.Reconciler.Snapshot()
	trades := reconciler.Page(snapshot, *pageSize, *page)
	appLogger.Info(context.Background(), "Fetched trades", map[string]interface{}{
		"count":    len(snapshot),
		"exported": len(trades),
		"page":     *page,
		"pages":    reconciler.PageCount(len(snapshot), *pageSize),
	})

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/trades_%s.csv", time.Now().Format("20060102_150405"))
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		engine.Close()
		log.Fatalf("Error creating output directory: %v", err)
	}
	if err := utils.WriteTradesToCSV(trades, filename); err != nil {
		appLogger.Error(context.Background(), err, "Error writing CSV")
		engine.Close()
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename})

	summary := report.Summarize(trades)
	fmt.Printf("Trades: %d (open %d, exited %d, other terminal %d)\n",
		summary.TotalTrades, summary.OpenTrades, summary.ExitedTrades, summary.TerminalTrades-summary.ExitedTrades)
	for _, st := range summary.Statuses() {
		fmt.Printf("  %-12s %d\n", st, summary.ByStatus[st])
	}
	fmt.Printf("Total quantity: %g (open %g)\n", summary.TotalQuantity, summary.OpenQuantity)
}
