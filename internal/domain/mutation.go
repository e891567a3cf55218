package domain

import "time"

// StrategyName identifies one step of the exit strategy chain.
type StrategyName string

const (
	StrategyNone          StrategyName = "none" // Nothing was attempted (precondition failure)
	StrategyDedicatedExit StrategyName = "dedicated-exit"
	StrategyStatusUpdate  StrategyName = "status-update"
	StrategyLocalFallback StrategyName = "local-fallback"
)

// Outcome is the result class of a mutation attempt.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeRemoteFailure      Outcome = "remote-failure"
	OutcomeTransportError     Outcome = "transport-error"
	OutcomePreconditionFailed Outcome = "precondition-failed"
)

// Retryable reports whether a caller may reasonably issue the same request again.
func (o Outcome) Retryable() bool {
	return o != OutcomeSuccess && o != OutcomePreconditionFailed
}

// MutationAttemptResult describes the outcome of an exit request (or of a single
// strategy attempt within one). It is propagated and logged, never stored.
type MutationAttemptResult struct {
	TradeID       string
	Strategy      StrategyName
	Outcome       Outcome
	ServerPayload any    // Decoded response body, if any
	Reason        string // Human readable detail for failures
	At            time.Time
}

// Succeeded reports whether the attempt ended in success.
func (r MutationAttemptResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}
