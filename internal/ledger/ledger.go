// Package ledger keeps the durable set of trade ids confirmed exited on this client.
package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"tradeSync/internal/ports"
)

// DefaultKey is the store key holding the serialized id set.
const DefaultKey = "exitedTrades"

// Ledger is an append-only membership set persisted through a ports.KeyValueStore.
// A nil store degrades to in-memory durability for the session.
type Ledger struct {
	mu     sync.RWMutex
	ids    map[string]struct{}
	store  ports.KeyValueStore
	key    string
	logger ports.Logger
}

// New creates an empty ledger. Call Load once before use.
func New(store ports.KeyValueStore, key string, logger ports.Logger) *Ledger {
	if key == "" {
		key = DefaultKey
	}
	return &Ledger{
		ids:    make(map[string]struct{}),
		store:  store,
		key:    key,
		logger: logger,
	}
}

// Load reads the persisted set and merges it into memory. Missing, corrupt or
// unreadable storage yields whatever is already in memory; it is never fatal.
func (l *Ledger) Load(ctx context.Context) map[string]struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		l.logger.Warn(ctx, "Exit ledger has no durable store, exits are kept in memory only")
		return l.copyLocked()
	}

	raw, found, err := l.store.ReadKey(ctx, l.key)
	if err != nil {
		l.logger.Error(ctx, err, "Failed to read exit ledger, starting empty", map[string]interface{}{"key": l.key})
		return l.copyLocked()
	}
	if !found || raw == "" {
		l.logger.Debug(ctx, "Exit ledger not found in store, starting empty", map[string]interface{}{"key": l.key})
		return l.copyLocked()
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		l.logger.Warn(ctx, "Exit ledger is corrupt, starting empty", map[string]interface{}{"key": l.key, "error": err.Error()})
		return l.copyLocked()
	}
	for _, id := range ids {
		if id != "" {
			l.ids[id] = struct{}{}
		}
	}
	l.logger.Info(ctx, "Exit ledger loaded", map[string]interface{}{"count": len(l.ids)})
	return l.copyLocked()
}

// Has reports whether tradeID has been recorded as exited.
func (l *Ledger) Has(tradeID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[tradeID]
	return ok
}

// Add records tradeID and persists the whole set before returning. Adding an id
// twice is a no-op. Persistence failures are logged; membership still holds for
// the rest of the session.
func (l *Ledger) Add(ctx context.Context, tradeID string) {
	if tradeID == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[tradeID]; ok {
		return
	}
	l.ids[tradeID] = struct{}{}

	if l.store == nil {
		return
	}
	payload, err := json.Marshal(l.sortedLocked())
	if err != nil {
		l.logger.Error(ctx, err, "Failed to encode exit ledger", map[string]interface{}{"tradeID": tradeID})
		return
	}
	// The write outlives the caller's deadline: an exit confirmed in memory must reach the store.
	if err := l.store.WriteKey(context.WithoutCancel(ctx), l.key, string(payload)); err != nil {
		l.logger.Error(ctx, err, "Failed to persist exit ledger, exit kept in memory", map[string]interface{}{"tradeID": tradeID})
		return
	}
	l.logger.Debug(ctx, "Exit recorded in ledger", map[string]interface{}{"tradeID": tradeID, "count": len(l.ids)})
}

// IDs returns the recorded ids in sorted order.
func (l *Ledger) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sortedLocked()
}

// Len returns the number of recorded ids.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

func (l *Ledger) sortedLocked() []string {
	out := make([]string, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (l *Ledger) copyLocked() map[string]struct{} {
	out := make(map[string]struct{}, len(l.ids))
	for id := range l.ids {
		out[id] = struct{}{}
	}
	return out
}
