// Package report aggregates a trade snapshot into figures for logs and exports.
package report

import (
	"sort"
	"time"

	"tradeSync/internal/domain"
)

// Summary holds aggregate figures for one snapshot.
type Summary struct {
	TotalTrades    int
	OpenTrades     int // Non-terminal status
	ExitedTrades   int
	TerminalTrades int
	TotalQuantity  float64
	OpenQuantity   float64
	ByStatus       map[domain.TradeStatus]int
	ByUnderlying   map[string]int
	LastActivity   *time.Time // Latest of initiated, last processed and exited timestamps
}

// Summarize computes a Summary. The input is not modified.
func Summarize(trades []domain.Trade) *Summary {
	s := &Summary{
		ByStatus:     make(map[domain.TradeStatus]int),
		ByUnderlying: make(map[string]int),
	}

	for _, t := range trades {
		s.TotalTrades++
		s.ByStatus[t.Status]++
		s.TotalQuantity += t.TotalQuantity

		if t.UnderlyingSymbol != "" {
			s.ByUnderlying[t.UnderlyingSymbol]++
		}

		switch {
		case t.Status == domain.StatusExited:
			s.ExitedTrades++
			s.TerminalTrades++
		case t.Status.IsTerminal():
			s.TerminalTrades++
		default:
			s.OpenTrades++
			s.OpenQuantity += t.TotalQuantity
		}

		for _, ts := range []*time.Time{t.InitiatedAt, t.LastProcessedAt, t.ExitedAt} {
			if ts != nil && (s.LastActivity == nil || ts.After(*s.LastActivity)) {
				v := *ts
				s.LastActivity = &v
			}
		}
	}

	return s
}

// Statuses returns the statuses present in the summary, sorted by name.
func (s *Summary) Statuses() []domain.TradeStatus {
	out := make([]domain.TradeStatus, 0, len(s.ByStatus))
	for st := range s.ByStatus {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fields renders the summary as structured log fields.
func (s *Summary) Fields() map[string]interface{} {
	byStatus := make(map[string]int, len(s.ByStatus))
	for st, n := range s.ByStatus {
		byStatus[string(st)] = n
	}
	fields := map[string]interface{}{
		"total":         s.TotalTrades,
		"open":          s.OpenTrades,
		"exited":        s.ExitedTrades,
		"terminal":      s.TerminalTrades,
		"totalQuantity": s.TotalQuantity,
		"openQuantity":  s.OpenQuantity,
		"byStatus":      byStatus,
	}
	if s.LastActivity != nil {
		fields["lastActivity"] = s.LastActivity.Format(time.RFC3339)
	}
	return fields
}
