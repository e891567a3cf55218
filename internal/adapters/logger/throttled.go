package logger

import (
	"context"
	"sync"
	"time"

	"tradeSync/internal/ports"
)

// Throttled wraps a ports.Logger and rate-limits selected warnings per key.
// A key may be emitted again once cooldown has elapsed since its last emission.
type Throttled struct {
	ports.Logger

	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

// NewThrottled wraps base. A non-positive cooldown disables throttling.
func NewThrottled(base ports.Logger, cooldown time.Duration) *Throttled {
	return &Throttled{
		Logger:   base,
		cooldown: cooldown,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether key may be emitted now and, if so, records the emission.
func (t *Throttled) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if last, ok := t.last[key]; ok && t.cooldown > 0 && now.Sub(last) < t.cooldown {
		return false
	}
	t.last[key] = now
	return true
}

// Reset forgets key so the next WarnEvery emits immediately.
func (t *Throttled) Reset(key string) {
	t.mu.Lock()
	delete(t.last, key)
	t.mu.Unlock()
}

// WarnEvery logs at Warn level at most once per cooldown for key.
func (t *Throttled) WarnEvery(ctx context.Context, key, msg string, fields ...map[string]interface{}) bool {
	if !t.Allow(key) {
		return false
	}
	t.Logger.Warn(ctx, msg, fields...)
	return true
}
