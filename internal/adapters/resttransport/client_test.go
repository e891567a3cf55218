package resttransport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeSync/internal/ports"
)

type mockLogger struct {
	mu       sync.Mutex
	warnMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func (m *mockLogger) warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warnMsgs...)
}

func newClient(t *testing.T, url string, log *mockLogger, retries int) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:          url + "/",
		APIToken:         "secret-token",
		Timeout:          2 * time.Second,
		RetryCount:       retries,
		AuthWarnCooldown: time.Hour,
		Logger:           log,
	})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{BaseURL: "http://localhost"})
	assert.ErrorIs(t, err, ports.ErrConfiguration)

	_, err = New(Config{BaseURL: "  ", Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfiguration)
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/trades", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"T1"}]}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, &mockLogger{}, 0)
	resp, err := c.Get(context.Background(), "/api/trades")

	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.JSONEq(t, `{"data":[{"id":"T1"}]}`, string(resp.Body))
}

func TestClient_PostAndPutSendJSON(t *testing.T) {
	var mu sync.Mutex
	got := map[string]map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		mu.Lock()
		got[r.Method+" "+r.URL.Path] = body
		mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, &mockLogger{}, 0)
	ctx := context.Background()

	resp, err := c.Post(ctx, "/api/trades/T1/exit", map[string]any{"reason": "Exited by user"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	_, err = c.Put(ctx, "/api/trades/T1", map[string]any{"status": "EXITED"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"reason": "Exited by user"}, got["POST /api/trades/T1/exit"])
	assert.Equal(t, map[string]any{"status": "EXITED"}, got["PUT /api/trades/T1"])
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"position locked"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, &mockLogger{}, 0)
	resp, err := c.Post(context.Background(), "/api/trades/T1/exit", nil)

	assert.ErrorIs(t, err, ports.ErrRemoteRejected)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "position locked")
}

func TestClient_RetriesOnlyReads(t *testing.T) {
	var gets, posts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			atomic.AddInt32(&gets, 1)
		} else {
			atomic.AddInt32(&posts, 1)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, &mockLogger{}, 1)
	ctx := context.Background()

	_, err := c.Get(ctx, "/api/trades")
	assert.ErrorIs(t, err, ports.ErrRemoteRejected)
	_, err = c.Post(ctx, "/api/trades/T1/exit", map[string]any{})
	assert.ErrorIs(t, err, ports.ErrRemoteRejected)

	assert.Equal(t, int32(2), atomic.LoadInt32(&gets))
	assert.Equal(t, int32(1), atomic.LoadInt32(&posts))
}

func TestClient_AuthWarningIsThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	log := &mockLogger{}
	c := newClient(t, srv.URL, log, 0)
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "/api/trades")
		assert.ErrorIs(t, err, ports.ErrRemoteRejected)
		assert.ErrorIs(t, err, ports.ErrUnauthenticated)
	}

	auth := 0
	for _, msg := range log.warnings() {
		if msg == "Backend rejected credentials, check API_TOKEN" {
			auth++
		}
	}
	assert.Equal(t, 1, auth)
}

func TestClient_AuthWarningRearmsAfterSuccess(t *testing.T) {
	var authorized atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authorized.Load() {
			w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	log := &mockLogger{}
	c := newClient(t, srv.URL, log, 0)
	ctx := context.Background()

	_, _ = c.Get(ctx, "/api/trades")
	authorized.Store(true)
	_, err := c.Get(ctx, "/api/trades")
	require.NoError(t, err)
	authorized.Store(false)
	_, _ = c.Get(ctx, "/api/trades")

	assert.Len(t, log.warnings(), 2)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newClient(t, url, &mockLogger{}, 0)
	resp, err := c.Put(context.Background(), "/api/trades/T1", map[string]any{})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ports.ErrTransport)
}
