// Package resttransport implements ports.Transport over HTTP with go-resty.
package resttransport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"tradeSync/internal/adapters/logger"
	"tradeSync/internal/ports"
)

const authWarnKey = "backend-auth"

// Config holds configuration for the REST transport.
type Config struct {
	BaseURL          string
	APIToken         string
	Timeout          time.Duration
	RetryCount       int // Applies to reads only
	AuthWarnCooldown time.Duration
	Logger           ports.Logger
}

// Client implements ports.Transport. Reads and mutations use separate resty
// clients so that only idempotent reads are ever retried.
type Client struct {
	reads  *resty.Client
	writes *resty.Client
	logger *logger.Throttled
}

// New creates a REST transport for the backend at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for REST transport: %w", ports.ErrConfiguration)
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend base URL is required: %w", ports.ErrConfiguration)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{logger: logger.NewThrottled(cfg.Logger, cfg.AuthWarnCooldown)}
	c.reads = c.newResty(base, cfg.APIToken, timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if resp == nil {
				return err != nil
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500
		})
	c.writes = c.newResty(base, cfg.APIToken, timeout).SetRetryCount(0)

	cfg.Logger.Info(context.Background(), "REST transport configured", map[string]interface{}{
		"baseURL": base, "timeout": timeout.String(), "readRetries": cfg.RetryCount,
	})
	return c, nil
}

func (c *Client) newResty(base, token string, timeout time.Duration) *resty.Client {
	rc := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetLogger(restyLogger{base: c.logger})
	if token != "" {
		rc.SetAuthToken(token)
	}
	return rc
}

// Get fetches path from the backend.
func (c *Client) Get(ctx context.Context, path string) (*ports.RawResponse, error) {
	resp, err := c.reads.R().SetContext(ctx).Get(path)
	return c.result(ctx, http.MethodGet, path, resp, err)
}

// Post sends body as JSON to path.
func (c *Client) Post(ctx context.Context, path string, body any) (*ports.RawResponse, error) {
	resp, err := c.writes.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	return c.result(ctx, http.MethodPost, path, resp, err)
}

// Put sends body as JSON to path.
func (c *Client) Put(ctx context.Context, path string, body any) (*ports.RawResponse, error) {
	resp, err := c.writes.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Put(path)
	return c.result(ctx, http.MethodPut, path, resp, err)
}

func (c *Client) result(ctx context.Context, method, path string, resp *resty.Response, err error) (*ports.RawResponse, error) {
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.WithMessagef(ports.ErrContextCanceled, "%s %s: %v", method, path, err)
		}
		return nil, errors.WithMessagef(ports.ErrTransport, "%s %s: %v", method, path, err)
	}

	raw := &ports.RawResponse{StatusCode: resp.StatusCode(), Body: resp.Body()}
	if resp.IsSuccess() {
		// Credentials work again; the next rejection warns immediately.
		c.logger.Reset(authWarnKey)
		c.logger.Debug(ctx, "Backend request succeeded", map[string]interface{}{"method": method, "path": path, "status": raw.StatusCode})
		return raw, nil
	}

	rejected := errors.WithMessagef(ports.ErrRemoteRejected, "%s %s: status %d", method, path, raw.StatusCode)
	if raw.StatusCode == http.StatusUnauthorized || raw.StatusCode == http.StatusForbidden {
		c.logger.WarnEvery(ctx, authWarnKey, "Backend rejected credentials, check API_TOKEN", map[string]interface{}{
			"method": method, "path": path, "status": raw.StatusCode,
		})
		return raw, fmt.Errorf("%w: %w", ports.ErrUnauthenticated, rejected)
	}
	return raw, rejected
}

// restyLogger routes resty's internal messages (retries, warnings) to ports.Logger.
type restyLogger struct {
	base ports.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.base.Error(context.Background(), fmt.Errorf(format, v...), "resty error")
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.base.Warn(context.Background(), fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.base.Debug(context.Background(), fmt.Sprintf(format, v...))
}
