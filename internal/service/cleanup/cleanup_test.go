package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCleaner) CleanupSessions(context.Context) (int64, error) {
	f.calls.Add(1)
	return 3, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnce(t *testing.T) {
	cleaner := &fakeCleaner{}
	assert.EqualValues(t, 3, New(cleaner, "", discard()).RunOnce(context.Background()))

	failing := &fakeCleaner{err: errors.New("db down")}
	assert.EqualValues(t, 0, New(failing, "", discard()).RunOnce(context.Background()))
}

func TestRunSchedules(t *testing.T) {
	cleaner := &fakeCleaner{}
	s := New(cleaner, "@every 1s", discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return cleaner.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRunRejectsBadSchedule(t *testing.T) {
	err := New(&fakeCleaner{}, "not a schedule", discard()).Run(context.Background())
	assert.Error(t, err)
}
