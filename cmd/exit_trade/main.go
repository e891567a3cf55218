package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"tradeSync/config"
	"tradeSync/internal/adapters/logger"
	"tradeSync/internal/app"
	"tradeSync/internal/domain"
)

// Exit codes.
const (
	exitOK           = 0
	exitFailed       = 1
	exitPrecondition = 2
)

func main() {
	id := flag.String("id", "", "trade id to exit (required)")
	flag.Parse()
	if *id == "" {
		fmt.Fprintln(os.Stderr, "usage: exit_trade -id <tradeID>")
		os.Exit(exitPrecondition)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel})

	engine, err := app.NewEngine(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize sync engine")
		log.Fatalf("FATAL: Failed to initialize sync engine: %v", err)
	}

	// The exit preconditions are checked against the current snapshot.
	if err := engine.Reconciler.RefreshNow(context.Background()); err != nil {
		appLogger.Warn(context.Background(), "Could not refresh trades before exit", map[string]interface{}{"error": err.Error()})
	}

	res := engine.Reconciler.RequestExit(context.Background(), *id)
	if err := engine.Close(); err != nil {
		appLogger.Error(context.Background(), err, "Error closing sync engine")
	}

	fmt.Printf("trade=%s strategy=%s outcome=%s\n", *id, res.Strategy, res.Outcome)
	if res.Reason != "" {
		fmt.Printf("reason: %s\n", res.Reason)
	}
	os.Exit(exitCode(res))
}

func exitCode(res domain.MutationAttemptResult) int {
	switch {
	case res.Succeeded():
		return exitOK
	case res.Outcome == domain.OutcomePreconditionFailed:
		return exitPrecondition
	default:
		return exitFailed
	}
}
