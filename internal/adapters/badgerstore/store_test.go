package badgerstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeSync/internal/ledger"
	"tradeSync/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open(Config{Path: t.TempDir()})
	assert.ErrorIs(t, err, ports.ErrConfiguration)

	_, err = Open(Config{Path: "  ", Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfiguration)
}

func TestStore_ReadWriteKey(t *testing.T) {
	store, err := Open(Config{Path: t.TempDir(), Logger: &mockLogger{}})
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, found, err := store.ReadKey(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.WriteKey(ctx, "empty", ""))
	value, found, err := store.ReadKey(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, found, "an empty value is still present")
	assert.Empty(t, value)

	require.NoError(t, store.WriteKey(ctx, "k", "v1"))
	require.NoError(t, store.WriteKey(ctx, "k", "v2"))
	value, found, err = store.ReadKey(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", value)
}

func TestStore_LedgerSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(Config{Path: dir, Logger: &mockLogger{}})
	require.NoError(t, err)
	first := ledger.New(store, "", &mockLogger{})
	first.Load(ctx)
	first.Add(ctx, "T2")
	first.Add(ctx, "T1")
	require.NoError(t, store.Close())

	reopened, err := Open(Config{Path: dir, Logger: &mockLogger{}})
	require.NoError(t, err)
	defer reopened.Close()

	second := ledger.New(reopened, "", &mockLogger{})
	second.Load(ctx)
	assert.True(t, second.Has("T1"))
	assert.True(t, second.Has("T2"))
	assert.Equal(t, 2, second.Len())
}
