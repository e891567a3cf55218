package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	warnMsgs []string
}

func (m *recordingLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *recordingLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *recordingLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *recordingLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestThrottled_WarnEvery(t *testing.T) {
	base := &recordingLogger{}
	th := NewThrottled(base, time.Minute)
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return clock }
	ctx := context.Background()

	assert.True(t, th.WarnEvery(ctx, "auth", "credentials rejected"))
	assert.False(t, th.WarnEvery(ctx, "auth", "credentials rejected"))

	// Other keys are independent.
	assert.True(t, th.WarnEvery(ctx, "other", "something else"))

	clock = clock.Add(59 * time.Second)
	assert.False(t, th.WarnEvery(ctx, "auth", "credentials rejected"))

	clock = clock.Add(time.Second)
	assert.True(t, th.WarnEvery(ctx, "auth", "credentials rejected"))

	assert.Equal(t, []string{"credentials rejected", "something else", "credentials rejected"}, base.warnMsgs)
}

func TestThrottled_ResetAndDisabled(t *testing.T) {
	base := &recordingLogger{}
	th := NewThrottled(base, time.Hour)
	ctx := context.Background()

	assert.True(t, th.WarnEvery(ctx, "auth", "first"))
	th.Reset("auth")
	assert.True(t, th.WarnEvery(ctx, "auth", "after reset"))

	off := NewThrottled(base, 0)
	assert.True(t, off.WarnEvery(ctx, "k", "a"))
	assert.True(t, off.WarnEvery(ctx, "k", "b"))

	// Non-warn calls pass through untouched.
	th.Info(ctx, "ignored")
	assert.Len(t, base.warnMsgs, 4)
}
