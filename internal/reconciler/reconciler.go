// Package reconciler merges the backend trade list with locally confirmed exits and
// publishes one consistent snapshot to consumers.
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tradeSync/internal/domain"
	"tradeSync/internal/exitchain"
	"tradeSync/internal/ledger"
	"tradeSync/internal/normalize"
	"tradeSync/internal/ports"
)

const pollKey = "poll"

// Config holds the reconciler's collaborators and backend endpoints.
type Config struct {
	Transport  ports.Transport
	Ledger     *ledger.Ledger
	Logger     ports.Logger
	ListPath   string
	ExitPath   string
	UpdatePath string
	ExitReason string
	Now        func() time.Time
	// Strategies overrides the default exit chain order. Used by tests and tools.
	Strategies []exitchain.Strategy
}

// Reconciler polls the trade list, merges it with the exit ledger and exposes
// the merged snapshot plus the exit entry point.
type Reconciler struct {
	transport ports.Transport
	ledger    *ledger.Ledger
	logger    ports.Logger
	listPath  string
	now       func() time.Time
	chain     *exitchain.Chain
	polls     singleflight.Group

	mu        sync.RWMutex
	snapshot  []domain.Trade
	index     map[string]int       // trade id -> position in snapshot
	exitedAt  map[string]time.Time // exits observed this session, with the time first seen
	listeners []ports.SnapshotListener
	started   bool
	stopped   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New validates cfg, loads the exit ledger and builds the exit chain.
func New(ctx context.Context, cfg Config) (*Reconciler, error) {
	if cfg.Transport == nil || cfg.Ledger == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for reconciler: %w", ports.ErrConfiguration)
	}
	if cfg.ListPath == "" {
		return nil, fmt.Errorf("trade list path is required: %w", ports.ErrConfiguration)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	r := &Reconciler{
		transport: cfg.Transport,
		ledger:    cfg.Ledger,
		logger:    cfg.Logger,
		listPath:  cfg.ListPath,
		now:       now,
		snapshot:  []domain.Trade{},
		index:     make(map[string]int),
		exitedAt:  make(map[string]time.Time),
	}

	chain, err := exitchain.New(exitchain.Config{
		Transport:  cfg.Transport,
		Ledger:     cfg.Ledger,
		Logger:     cfg.Logger,
		Status:     r.statusOf,
		ExitPath:   cfg.ExitPath,
		UpdatePath: cfg.UpdatePath,
		ExitReason: cfg.ExitReason,
		AfterExit:  r.scheduleRefresh,
		Now:        now,
		Strategies: cfg.Strategies,
	})
	if err != nil {
		return nil, err
	}
	r.chain = chain

	cfg.Ledger.Load(ctx)
	return r, nil
}

// Subscribe registers a listener for snapshot and mutation notifications.
func (r *Reconciler) Subscribe(l ports.SnapshotListener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// Start begins periodic polling. The first poll runs immediately; each following
// poll starts one interval after the previous one finished.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s: %w", interval, ports.ErrInvalidRequest)
	}

	r.mu.Lock()
	if r.started || r.stopped {
		r.mu.Unlock()
		return ports.ErrAlreadyStarted
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.started = true
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	r.logger.Info(ctx, "Reconciler started", map[string]interface{}{"interval": interval.String(), "path": r.listPath})
	go r.loop(loopCtx, interval, done)
	return nil
}

func (r *Reconciler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	_ = r.RefreshNow(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			_ = r.RefreshNow(ctx)
			timer.Reset(interval)
		}
	}
}

// Stop cancels the polling loop. Polls or exits still in flight complete, but
// their results are no longer published.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	r.logger.Info(context.Background(), "Reconciler stopped")
}

// RefreshNow polls the backend once. A call made while a poll is in flight joins
// that poll instead of issuing a second request. On failure the previous
// snapshot stays published and the error is returned.
func (r *Reconciler) RefreshNow(ctx context.Context) error {
	ch := r.polls.DoChan(pollKey, func() (interface{}, error) {
		// Detached so one caller's cancellation does not fail the shared poll.
		return nil, r.poll(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reconciler) poll(ctx context.Context) error {
	resp, err := r.transport.Get(ctx, r.listPath)
	if err == nil && !resp.OK() {
		err = fmt.Errorf("unexpected response status: %w", ports.ErrRemoteRejected)
	}
	if err != nil {
		err = fmt.Errorf("failed to fetch trade list: %w", err)
		r.logger.Error(ctx, err, "Poll failed, keeping last snapshot", map[string]interface{}{"path": r.listPath})
		return err
	}

	fresh := normalize.NormalizeJSON(resp.Body)
	if !r.publish(fresh) {
		r.logger.Debug(ctx, "Poll finished after teardown, result discarded")
		return nil
	}
	r.logger.Debug(ctx, "Snapshot published", map[string]interface{}{"trades": len(fresh)})
	r.notifySnapshot()
	return nil
}

// publish merges fresh with the ledger and swaps it in. It returns false when the
// reconciler has been torn down.
func (r *Reconciler) publish(fresh []domain.Trade) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	merged := r.mergeLocked(fresh)
	r.snapshot = merged
	r.index = indexByID(merged)
	return true
}

// mergeLocked forces EXITED on every trade recorded in the ledger or already seen
// exited during this session, whatever the backend reported.
func (r *Reconciler) mergeLocked(fresh []domain.Trade) []domain.Trade {
	merged := make([]domain.Trade, len(fresh))
	copy(merged, fresh)

	for i := range merged {
		t := &merged[i]
		if t.Status == domain.StatusExited {
			r.observeExitLocked(t.ID, t.ExitedAt)
		}
		if !r.ledger.Has(t.ID) {
			if _, seen := r.exitedAt[t.ID]; !seen {
				continue
			}
		}
		at := r.observeExitLocked(t.ID, t.ExitedAt)
		t.Status = domain.StatusExited
		if t.ExitedAt == nil {
			stamp := at
			t.ExitedAt = &stamp
		}
	}
	return merged
}

// observeExitLocked returns the session exit time for id, recording one if needed.
func (r *Reconciler) observeExitLocked(id string, reported *time.Time) time.Time {
	if at, ok := r.exitedAt[id]; ok {
		return at
	}
	at := r.now()
	if reported != nil {
		at = *reported
	}
	r.exitedAt[id] = at
	return at
}

// Snapshot returns a copy of the last published, merged trade list.
func (r *Reconciler) Snapshot() []domain.Trade {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Trade, len(r.snapshot))
	copy(out, r.snapshot)
	return out
}

// Trade returns the merged record for id, if present.
func (r *Reconciler) Trade(id string) (domain.Trade, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return domain.Trade{}, false
	}
	return r.snapshot[i], true
}

// RequestExit runs the exit chain for id and, on success, republishes the snapshot
// with the trade marked EXITED. Every call emits OnMutationResult unless the
// reconciler has been stopped.
func (r *Reconciler) RequestExit(ctx context.Context, id string) domain.MutationAttemptResult {
	res := r.chain.Exit(ctx, id)
	if res.Succeeded() && r.applyExit(id, res.At) {
		r.notifySnapshot()
	}
	r.notifyMutation(id, res)
	return res
}

func (r *Reconciler) applyExit(id string, at time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	if _, ok := r.exitedAt[id]; !ok {
		r.exitedAt[id] = at
	}
	i, ok := r.index[id]
	if !ok {
		return false
	}

	next := make([]domain.Trade, len(r.snapshot))
	copy(next, r.snapshot)
	t := &next[i]
	t.Status = domain.StatusExited
	if t.ExitedAt == nil {
		stamp := r.exitedAt[id]
		t.ExitedAt = &stamp
	}
	r.snapshot = next
	return true
}

func (r *Reconciler) statusOf(id string) (domain.TradeStatus, bool) {
	t, ok := r.Trade(id)
	if !ok {
		return "", false
	}
	return t.Status, true
}

// scheduleRefresh starts a background poll so the snapshot converges with the
// backend right after an exit. It never blocks the exit caller.
func (r *Reconciler) scheduleRefresh(id string) {
	r.mu.RLock()
	stopped := r.stopped
	r.mu.RUnlock()
	if stopped {
		return
	}
	go func() {
		if err := r.RefreshNow(context.Background()); err != nil {
			r.logger.Debug(context.Background(), "Post-exit refresh failed", map[string]interface{}{"tradeID": id})
		}
	}()
}

func (r *Reconciler) notifySnapshot() {
	r.mu.RLock()
	listeners := append([]ports.SnapshotListener(nil), r.listeners...)
	r.mu.RUnlock()
	if len(listeners) == 0 {
		return
	}
	// Always deliver the latest state, so out-of-order deliveries still converge.
	trades := r.Snapshot()
	for _, l := range listeners {
		l.OnSnapshotChanged(trades)
	}
}

func (r *Reconciler) notifyMutation(id string, res domain.MutationAttemptResult) {
	r.mu.RLock()
	if r.stopped {
		r.mu.RUnlock()
		return
	}
	listeners := append([]ports.SnapshotListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, l := range listeners {
		l.OnMutationResult(id, res)
	}
}

func indexByID(trades []domain.Trade) map[string]int {
	idx := make(map[string]int, len(trades))
	for i, t := range trades {
		if _, dup := idx[t.ID]; !dup {
			idx[t.ID] = i
		}
	}
	return idx
}
