package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"tradeSync/config"
	"tradeSync/internal/adapters/badgerstore"
	"tradeSync/internal/adapters/memstore"
	"tradeSync/internal/adapters/resttransport"
	"tradeSync/internal/adapters/sqlite"
	"tradeSync/internal/ledger"
	"tradeSync/internal/ports"
	"tradeSync/internal/reconciler"
)

// Engine owns the wired sync components and the resources behind them.
type Engine struct {
	Ledger     *ledger.Ledger
	Reconciler *reconciler.Reconciler

	logger  ports.Logger
	store   ports.KeyValueStore
	closers []io.Closer
}

// Option overrides a collaborator NewEngine would otherwise build from config.
type Option func(*engineDeps)

type engineDeps struct {
	transport ports.Transport
	store     ports.KeyValueStore
}

// WithTransport replaces the REST transport.
func WithTransport(t ports.Transport) Option {
	return func(d *engineDeps) { d.transport = t }
}

// WithStore replaces the store selected by STORE_DRIVER.
func WithStore(s ports.KeyValueStore) Option {
	return func(d *engineDeps) { d.store = s }
}

// NewEngine wires store, ledger, transport and reconciler from cfg. A durable
// store that fails to open degrades to an in-memory one.
func NewEngine(ctx context.Context, cfg *config.Config, logger ports.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for engine: %w", ports.ErrConfiguration)
	}
	deps := &engineDeps{}
	for _, opt := range opts {
		opt(deps)
	}

	e := &Engine{logger: logger}

	if deps.store != nil {
		e.store = deps.store
	} else {
		store, closer := OpenStore(ctx, cfg, logger)
		e.store = store
		if closer != nil {
			e.closers = append(e.closers, closer)
		}
	}

	transport := deps.transport
	if transport == nil {
		rt, err := resttransport.New(resttransport.Config{
			BaseURL:          cfg.BaseURL,
			APIToken:         cfg.APIToken,
			Timeout:          cfg.HTTPTimeout,
			RetryCount:       cfg.HTTPRetryCount,
			AuthWarnCooldown: cfg.AuthWarnCooldown,
			Logger:           logger,
		})
		if err != nil {
			return nil, multierr.Append(err, e.closeResources())
		}
		transport = rt
	}

	e.Ledger = ledger.New(e.store, cfg.LedgerKey, logger)
	rec, err := reconciler.New(ctx, reconciler.Config{
		Transport:  transport,
		Ledger:     e.Ledger,
		Logger:     logger,
		ListPath:   cfg.TradesListPath,
		ExitPath:   cfg.TradeExitPath,
		UpdatePath: cfg.TradeUpdatePath,
		ExitReason: cfg.ExitReason,
	})
	if err != nil {
		return nil, multierr.Append(err, e.closeResources())
	}
	e.Reconciler = rec
	return e, nil
}

// OpenStore opens the store named by cfg.StoreDriver. The returned closer is nil
// when the store holds no resources.
func OpenStore(ctx context.Context, cfg *config.Config, logger ports.Logger) (ports.KeyValueStore, io.Closer) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Info(ctx, "Using in-memory store, exits will not survive a restart")
		return memstore.New(), nil
	case config.StoreBadger:
		s, err := badgerstore.Open(badgerstore.Config{Path: cfg.BadgerPath, Logger: logger})
		if err == nil {
			return s, s
		}
		logger.Warn(ctx, "Badger store unavailable, falling back to in-memory store", map[string]interface{}{"path": cfg.BadgerPath, "error": err.Error()})
	default:
		s, err := sqlite.NewStore(sqlite.Config{DBPath: cfg.DBPath, Logger: logger})
		if err == nil {
			return s, s
		}
		logger.Warn(ctx, "SQLite store unavailable, falling back to in-memory store", map[string]interface{}{"path": cfg.DBPath, "error": err.Error()})
	}
	return memstore.New(), nil
}

// Store returns the key-value store backing the ledger.
func (e *Engine) Store() ports.KeyValueStore {
	return e.store
}

// Close stops the reconciler and releases the store.
func (e *Engine) Close() error {
	if e.Reconciler != nil {
		e.Reconciler.Stop()
	}
	return e.closeResources()
}

func (e *Engine) closeResources() error {
	var err error
	for _, c := range e.closers {
		err = multierr.Append(err, c.Close())
	}
	e.closers = nil
	return err
}
