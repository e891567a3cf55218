package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goccy/go-json"

	"tradeSync/config"
	"tradeSync/internal/adapters/logger"
	"tradeSync/internal/app"
	"tradeSync/internal/ledger"
)

func main() {
	asJSON := flag.Bool("json", false, "print ids as a JSON array")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(logger.Config{Level: logger.LevelWarn})

	store, closer := app.OpenStore(context.Background(), cfg, appLogger)
	if closer != nil {
		defer closer.Close()
	}

	l := ledger.New(store, cfg.LedgerKey, appLogger)
	l.Load(context.Background())
	ids := l.IDs()

	if *asJSON {
		if err := json.NewEncoder(os.Stdout).Encode(ids); err != nil {
			log.Fatalf("Error encoding ledger: %v", err)
		}
		return
	}
	fmt.Printf("%d exited trade(s) in %s store (key %q)\n", len(ids), cfg.StoreDriver, cfg.LedgerKey)
	for _, id := range ids {
		fmt.Println(id)
	}
}
