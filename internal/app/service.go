package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tradeSync/config"
	"tradeSync/internal/ports"
)

// SyncService runs the engine as a long-lived process.
type SyncService struct {
	cfg    *config.Config
	logger ports.Logger
	engine *Engine
}

// NewSyncService creates a new application service instance.
func NewSyncService(cfg *config.Config, logger ports.Logger, engine *Engine) (*SyncService, error) {
	if cfg == nil || logger == nil || engine == nil || engine.Reconciler == nil {
		return nil, fmt.Errorf("missing required dependencies for SyncService: %w", ports.ErrConfiguration)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("configuration PollInterval must be positive: %w", ports.ErrConfiguration)
	}
	return &SyncService{cfg: cfg, logger: logger, engine: engine}, nil
}

// Start polls the backend until ctx is canceled or a shutdown signal arrives,
// then stops the reconciler. It does not close the engine.
func (s *SyncService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Sync Service...")

	// Create a context that can be canceled by signals
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel() // Cancel the main context
		case <-ctx.Done():
		}
	}()

	rec := s.engine.Reconciler
	rec.Subscribe(NewLogListener(s.logger))
	if err := rec.Start(ctx, s.cfg.PollInterval); err != nil {
		s.logger.Error(ctx, err, "Failed to start reconciler")
		return fmt.Errorf("failed to start reconciler: %w", err)
	}

	<-ctx.Done()
	s.logger.Info(context.Background(), "Shutting down Sync Service...")
	rec.Stop()
	s.logger.Info(context.Background(), "Sync Service stopped", map[string]interface{}{"exitedTrades": s.engine.Ledger.Len()})
	return nil
}
