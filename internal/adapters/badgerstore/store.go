// Package badgerstore is an embedded Badger implementation of ports.KeyValueStore.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"tradeSync/internal/ports"
)

// Store wraps a Badger database.
type Store struct {
	db     *badger.DB
	logger ports.Logger
}

// Config holds configuration for the Badger store.
type Config struct {
	Path   string
	Logger ports.Logger
}

// Open opens (creating if needed) the Badger directory at cfg.Path with synchronous writes.
func Open(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for badger store: %w", ports.ErrConfiguration)
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("badger path is required: %w", ports.ErrConfiguration)
	}
	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(nil).
		WithSyncWrites(true)
	db, err := badger.Open(opts)
	if err != nil {
		cfg.Logger.Error(context.Background(), err, "Badger store initialization failed", map[string]interface{}{"path": cfg.Path})
		return nil, errors.Join(ports.ErrStoreUnavailable, err)
	}
	cfg.Logger.Info(context.Background(), "Badger store ready", map[string]interface{}{"path": cfg.Path})
	return &Store{db: db, logger: cfg.Logger}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.logger.Info(context.Background(), "Closing Badger store")
	return s.db.Close()
}

// ReadKey returns the value stored under name.
func (s *Store) ReadKey(ctx context.Context, name string) (string, bool, error) {
	var (
		out   string
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			out = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", name, errors.Join(ports.ErrQueryFailed, err))
	}
	return out, found, nil
}

// WriteKey stores value under name.
func (s *Store) WriteKey(ctx context.Context, name, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(name), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", name, errors.Join(ports.ErrUpdateFailed, err))
	}
	s.logger.Debug(ctx, "Key written", map[string]interface{}{"key": name, "bytes": len(value)})
	return nil
}
