package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `
env: dev
listen:
  port: "9200"
  key: secret
chat:
  app_url: https://shop.example.com
  session_ttl: 2h
redis:
  enabled: true
  addr: redis:6379
whatsapp:
  phone_number_id: "1234"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	conf := MustLoad(path)
	require.NotNil(t, conf)
	assert.Equal(t, "dev", conf.Env)
	assert.Equal(t, "9200", conf.Listen.Port)
	assert.Equal(t, "secret", conf.Listen.ApiKey)
	assert.Equal(t, "https://shop.example.com", conf.Chat.AppURL)
	assert.Equal(t, 2*time.Hour, conf.Chat.SessionTTL)
	assert.Equal(t, 10*time.Second, conf.Chat.SideEffectTimeout)
	assert.True(t, conf.Redis.Enabled)
	assert.Equal(t, "redis:6379", conf.Redis.Addr)
	assert.Equal(t, 30*time.Second, conf.Redis.LockTTL)
	assert.Equal(t, "1234", conf.WhatsApp.PhoneNumberID)
	assert.Equal(t, 30, conf.WhatsApp.RatePerMinute)
	assert.Equal(t, "@every 1h", conf.Cleanup.Schedule)

	// Loaded once per process
	assert.Same(t, conf, MustLoad("does-not-matter.yml"))
}

func TestDefaults(t *testing.T) {
	t.Setenv("APP_URL", "https://env.example.com")

	conf, err := Defaults()
	require.NoError(t, err)
	assert.Equal(t, "local", conf.Env)
	assert.Equal(t, "https://env.example.com", conf.Chat.AppURL)
	assert.Equal(t, 24*time.Hour, conf.Chat.SessionTTL)
	assert.False(t, conf.Mongo.Enabled)
}
