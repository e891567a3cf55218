package app

import (
	"context"

	"tradeSync/internal/domain"
	"tradeSync/internal/ports"
	"tradeSync/internal/report"
)

// LogListener writes snapshot summaries and exit results to the logger.
type LogListener struct {
	logger ports.Logger
}

// NewLogListener returns a listener logging through logger.
func NewLogListener(logger ports.Logger) *LogListener {
	return &LogListener{logger: logger}
}

func (l *LogListener) OnSnapshotChanged(trades []domain.Trade) {
	l.logger.Info(context.Background(), "Trade snapshot updated", report.Summarize(trades).Fields())
}

func (l *LogListener) OnMutationResult(tradeID string, res domain.MutationAttemptResult) {
	fields := map[string]interface{}{
		"tradeID":  tradeID,
		"strategy": string(res.Strategy),
		"outcome":  string(res.Outcome),
	}
	if res.Reason != "" {
		fields["reason"] = res.Reason
	}
	if res.Succeeded() {
		l.logger.Info(context.Background(), "Trade exit succeeded", fields)
		return
	}
	fields["retryable"] = res.Outcome.Retryable()
	l.logger.Warn(context.Background(), "Trade exit failed", fields)
}
