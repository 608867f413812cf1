package logger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureSender) SendMessage(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *captureSender) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func TestTelegramHandler(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sender := &captureSender{}

	log := SetupTelegramHandler(base, sender, slog.LevelError).With(slog.String("mod", "chat.engine"))
	log.Info("session started")
	log.Error("saving session", slog.String("error", "timeout"))

	assert.Contains(t, buf.String(), "session started")
	assert.Contains(t, buf.String(), "saving session")

	require.Eventually(t, func() bool { return len(sender.all()) == 1 }, time.Second, 10*time.Millisecond)
	msg := sender.all()[0]
	assert.Contains(t, msg, "ERROR: saving session")
	assert.Contains(t, msg, "mod: chat.engine")
	assert.Contains(t, msg, "error: timeout")
}

func TestSetupLogger(t *testing.T) {
	dir := t.TempDir()
	for _, env := range []string{"local", "dev", "prod", "other"} {
		assert.NotNil(t, SetupLogger(env, dir), env)
	}
	assert.True(t, SetupLogger("local", "").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, SetupLogger("prod", dir).Enabled(context.Background(), slog.LevelDebug))
}
