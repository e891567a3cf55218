package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeSync/internal/ledger"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a store in a temporary directory.
func setupTestDB(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	store, err := NewStore(Config{DBPath: dbPath, Logger: &mockLogger{}})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func TestNewStore_RequiresLogger(t *testing.T) {
	_, err := NewStore(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestStore_ReadWriteKey(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	value, found, err := store.ReadKey(ctx, "exitedTrades")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)

	require.NoError(t, store.WriteKey(ctx, "exitedTrades", `["T1"]`))
	require.NoError(t, store.WriteKey(ctx, "exitedTrades", `["T1","T2"]`))

	value, found, err = store.ReadKey(ctx, "exitedTrades")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["T1","T2"]`, value)
}

func TestStore_LedgerSurvivesReopen(t *testing.T) {
	store, dbPath := setupTestDB(t)
	ctx := context.Background()

	first := ledger.New(store, "", &mockLogger{})
	first.Load(ctx)
	first.Add(ctx, "T1")
	first.Add(ctx, "T2")
	require.NoError(t, store.Close())

	reopened, err := NewStore(Config{DBPath: dbPath, Logger: &mockLogger{}})
	require.NoError(t, err)
	defer reopened.Close()

	second := ledger.New(reopened, "", &mockLogger{})
	second.Load(ctx)
	assert.Equal(t, []string{"T1", "T2"}, second.IDs())
}

func TestStore_LedgerAddWithCanceledContextSurvivesReopen(t *testing.T) {
	store, dbPath := setupTestDB(t)

	l := ledger.New(store, "", &mockLogger{})
	l.Load(context.Background())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.Add(ctx, "T1")
	require.NoError(t, store.Close())

	reopened, err := NewStore(Config{DBPath: dbPath, Logger: &mockLogger{}})
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.ReadKey(context.Background(), ledger.DefaultKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["T1"]`, value)
}

func TestStore_InMemoryDatabase(t *testing.T) {
	store, err := NewStore(Config{DBPath: ":memory:", Logger: &mockLogger{}})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.WriteKey(context.Background(), "k", "v"))
	v, found, err := store.ReadKey(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}
