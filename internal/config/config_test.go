package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://chat.test")
	t.Setenv("HISTORY_LIMIT", "not-a-number")
	t.Setenv("GOOGLE_SCOPES", " email , profile ,")
	t.Setenv("GOOGLE_CALLBACK_TIMEOUT", "30s")
	t.Setenv("NOTIFY_TERMINAL", "false")

	cfg := Load()

	assert.Equal(t, "http://chat.test", cfg.App.APIBaseURL)
	assert.Equal(t, 100, cfg.App.HistoryLimit)
	assert.Equal(t, []string{"email", "profile"}, cfg.Google.Scopes)
	assert.Equal(t, 30*time.Second, cfg.Google.CallbackTimeout)
	assert.False(t, cfg.Notify.Terminal)
	assert.Equal(t, 15, cfg.Server.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.Server.RateLimitWindow)
	assert.False(t, cfg.IsProduction())
}
