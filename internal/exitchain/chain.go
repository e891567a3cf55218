// Package exitchain executes exit requests through an ordered list of strategies,
// stopping at the first success.
package exitchain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tradeSync/internal/domain"
	"tradeSync/internal/ports"
)

// ExitLedger is the subset of the ledger the chain needs.
type ExitLedger interface {
	Has(tradeID string) bool
	Add(ctx context.Context, tradeID string)
}

// StatusLookup returns the current merged status of a trade and whether it is known.
type StatusLookup func(tradeID string) (domain.TradeStatus, bool)

// Config holds the chain's collaborators.
type Config struct {
	Transport  ports.Transport
	Ledger     ExitLedger
	Logger     ports.Logger
	Status     StatusLookup
	ExitPath   string // e.g. /api/trades/{id}/exit
	UpdatePath string // e.g. /api/trades/{id}
	ExitReason string
	// AfterExit runs after a successful exit has been recorded. It must not block.
	AfterExit func(tradeID string)
	Now       func() time.Time
	// Strategies overrides the default dedicated-exit, status-update, local-fallback order.
	Strategies []Strategy
}

// Chain runs exit strategies for one trade at a time per id.
type Chain struct {
	strategies []Strategy
	ledger     ExitLedger
	logger     ports.Logger
	status     StatusLookup
	afterExit  func(tradeID string)
	now        func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New validates cfg and builds a chain.
func New(cfg Config) (*Chain, error) {
	if cfg.Ledger == nil || cfg.Logger == nil || cfg.Status == nil {
		return nil, fmt.Errorf("missing required dependencies for exit chain: %w", ports.ErrConfiguration)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	strategies := cfg.Strategies
	if len(strategies) == 0 {
		if cfg.Transport == nil {
			return nil, fmt.Errorf("transport is required for remote exit strategies: %w", ports.ErrConfiguration)
		}
		if cfg.ExitPath == "" || cfg.UpdatePath == "" {
			return nil, fmt.Errorf("exit and update paths are required: %w", ports.ErrConfiguration)
		}
		strategies = []Strategy{
			NewDedicatedExit(cfg.Transport, cfg.ExitPath, cfg.ExitReason, now),
			NewStatusUpdate(cfg.Transport, cfg.UpdatePath, cfg.ExitReason, now),
			NewLocalFallback(now),
		}
	}

	return &Chain{
		strategies: strategies,
		ledger:     cfg.Ledger,
		logger:     cfg.Logger,
		status:     cfg.Status,
		afterExit:  cfg.AfterExit,
		now:        now,
		inFlight:   make(map[string]struct{}),
	}, nil
}

// Exit runs the strategy chain for tradeID. Precondition violations return an
// OutcomePreconditionFailed result without any remote call.
func (c *Chain) Exit(ctx context.Context, tradeID string) domain.MutationAttemptResult {
	if tradeID == "" {
		return c.rejected(tradeID, "trade id is required")
	}
	// Claim the id before checking the ledger so a sequence finishing concurrently
	// is either still in flight or already recorded.
	if !c.acquire(tradeID) {
		return c.rejected(tradeID, "exit already in progress")
	}
	defer c.release(tradeID)

	if c.ledger.Has(tradeID) {
		return c.rejected(tradeID, "trade already exited")
	}
	status, known := c.status(tradeID)
	if !known {
		return c.rejected(tradeID, "trade not found")
	}
	if status.IsTerminal() {
		return c.rejected(tradeID, fmt.Sprintf("trade is already %s", status))
	}

	var last domain.MutationAttemptResult
	for _, s := range c.strategies {
		last = s.Attempt(ctx, tradeID)
		fields := map[string]interface{}{"tradeID": tradeID, "strategy": s.Name(), "outcome": last.Outcome}
		if !last.Succeeded() {
			fields["reason"] = last.Reason
			c.logger.Warn(ctx, "Exit strategy failed, trying next", fields)
			continue
		}

		c.ledger.Add(context.WithoutCancel(ctx), tradeID)
		c.logger.Info(ctx, "Trade exited", fields)
		if c.afterExit != nil {
			c.afterExit(tradeID)
		}
		return last
	}

	// Only reachable with a custom strategy list lacking a local fallback.
	c.logger.Error(ctx, fmt.Errorf("all exit strategies failed"), "Trade exit failed", map[string]interface{}{"tradeID": tradeID})
	return last
}

// InFlight reports whether an exit sequence is currently running for tradeID.
func (c *Chain) InFlight(tradeID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[tradeID]
	return ok
}

func (c *Chain) acquire(tradeID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[tradeID]; busy {
		return false
	}
	c.inFlight[tradeID] = struct{}{}
	return true
}

func (c *Chain) release(tradeID string) {
	c.mu.Lock()
	delete(c.inFlight, tradeID)
	c.mu.Unlock()
}

func (c *Chain) rejected(tradeID, reason string) domain.MutationAttemptResult {
	c.logger.Debug(context.Background(), "Exit request rejected", map[string]interface{}{"tradeID": tradeID, "reason": reason})
	return domain.MutationAttemptResult{
		TradeID:  tradeID,
		Strategy: domain.StrategyNone,
		Outcome:  domain.OutcomePreconditionFailed,
		Reason:   reason,
		At:       c.now(),
	}
}
