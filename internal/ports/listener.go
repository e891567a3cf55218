package ports

import "tradeSync/internal/domain"

// SnapshotListener receives the only two notifications the reconciler emits.
// Implementations must not block for long; they run on the publishing goroutine.
type SnapshotListener interface {
	OnSnapshotChanged(trades []domain.Trade)
	OnMutationResult(tradeID string, result domain.MutationAttemptResult)
}
