package exitchain

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"

	"tradeSync/internal/domain"
	"tradeSync/internal/ports"
)

// Strategy is one step of the exit chain.
type Strategy interface {
	Name() domain.StrategyName
	Attempt(ctx context.Context, tradeID string) domain.MutationAttemptResult
}

type sendFunc func(ctx context.Context, path string, body any) (*ports.RawResponse, error)

// remoteStrategy performs one REST mutation and judges it by HTTP status and the
// application-level "success" flag in the response body.
type remoteStrategy struct {
	name     domain.StrategyName
	send     sendFunc
	pathTmpl string
	body     func(tradeID string) any
	now      func() time.Time
}

// NewDedicatedExit builds the strategy calling the backend's "close this position" operation.
func NewDedicatedExit(t ports.Transport, pathTmpl, reason string, now func() time.Time) Strategy {
	return &remoteStrategy{
		name:     domain.StrategyDedicatedExit,
		send:     t.Post,
		pathTmpl: pathTmpl,
		body: func(string) any {
			return map[string]any{"reason": reason}
		},
		now: now,
	}
}

// NewStatusUpdate builds the strategy that sets the trade status to EXITED via the
// generic update operation.
func NewStatusUpdate(t ports.Transport, pathTmpl, reason string, now func() time.Time) Strategy {
	s := &remoteStrategy{
		name:     domain.StrategyStatusUpdate,
		send:     t.Put,
		pathTmpl: pathTmpl,
		now:      now,
	}
	s.body = func(string) any {
		return map[string]any{
			"status":     string(domain.StatusExited),
			"exitedAt":   s.now().UTC().Format(time.RFC3339),
			"exitReason": reason,
		}
	}
	return s
}

func (s *remoteStrategy) Name() domain.StrategyName { return s.name }

func (s *remoteStrategy) Attempt(ctx context.Context, tradeID string) domain.MutationAttemptResult {
	res := domain.MutationAttemptResult{TradeID: tradeID, Strategy: s.name, At: s.now()}

	resp, err := s.send(ctx, ExpandPath(s.pathTmpl, tradeID), s.body(tradeID))
	if resp != nil {
		res.ServerPayload = decodePayload(resp.Body)
	}

	switch {
	case err != nil && !errors.Is(err, ports.ErrRemoteRejected):
		res.Outcome = domain.OutcomeTransportError
		res.Reason = err.Error()
	case resp == nil:
		res.Outcome = domain.OutcomeTransportError
		res.Reason = "no response from backend"
	case err != nil || !resp.OK():
		res.Outcome = domain.OutcomeRemoteFailure
		res.Reason = fmt.Sprintf("backend responded with status %d", resp.StatusCode)
	case !successFlag(res.ServerPayload):
		res.Outcome = domain.OutcomeRemoteFailure
		res.Reason = "backend did not confirm success"
		if msg := payloadMessage(res.ServerPayload); msg != "" {
			res.Reason += ": " + msg
		}
	default:
		res.Outcome = domain.OutcomeSuccess
	}
	return res
}

// localFallback never touches the network. It exists so the user-visible exit is
// never blocked by backend inconsistency.
type localFallback struct {
	now func() time.Time
}

// NewLocalFallback builds the terminal, always-successful strategy.
func NewLocalFallback(now func() time.Time) Strategy {
	return &localFallback{now: now}
}

func (l *localFallback) Name() domain.StrategyName { return domain.StrategyLocalFallback }

func (l *localFallback) Attempt(_ context.Context, tradeID string) domain.MutationAttemptResult {
	return domain.MutationAttemptResult{
		TradeID:  tradeID,
		Strategy: domain.StrategyLocalFallback,
		Outcome:  domain.OutcomeSuccess,
		Reason:   "remote exit unavailable, recorded locally",
		At:       l.now(),
	}
}

// ExpandPath substitutes the path-escaped trade id for every "{id}" in tmpl.
func ExpandPath(tmpl, tradeID string) string {
	return strings.ReplaceAll(tmpl, "{id}", url.PathEscape(tradeID))
}

func decodePayload(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}

func successFlag(payload any) bool {
	obj, ok := payload.(map[string]any)
	if !ok {
		return false
	}
	flag, err := cast.ToBoolE(obj["success"])
	return err == nil && flag
}

func payloadMessage(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	for _, k := range []string{"message", "error", "msg"} {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
