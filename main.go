package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"tradeSync/config"
	"tradeSync/internal/adapters/logger"
	"tradeSync/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		JSON:       cfg.LogJSON,
	})
	defer appLogger.Close()
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Wire store, ledger, transport and reconciler
	engine, err := app.NewEngine(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize sync engine")
		log.Fatalf("FATAL: Failed to initialize sync engine: %v", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing sync engine")
		}
	}()
	appLogger.Info(context.Background(), "Sync engine initialized", map[string]interface{}{
		"backend":      cfg.BaseURL,
		"store":        cfg.StoreDriver,
		"exitedTrades": engine.Ledger.Len(),
	})

	// 4. Initialize Application Service
	syncService, err := app.NewSyncService(cfg, appLogger, engine)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize sync service")
		log.Fatalf("FATAL: Failed to initialize sync service: %v", err)
	}

	// 5. Start the Service
	if err := syncService.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Sync service exited with error")
		log.Fatalf("FATAL: Sync service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
