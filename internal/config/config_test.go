package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Len(t, cfg.Instruments, 3)
	assert.Equal(t, 300, cfg.Acquisition.HistoryBars)
	assert.Equal(t, 3, cfg.Acquisition.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Acquisition.MinDelay)
	assert.Equal(t, 10*time.Second, cfg.Acquisition.MaxDelay)
	assert.InDelta(t, 2.0, cfg.Spread.ThresholdPct, 1e-9)
	assert.InDelta(t, 1320.0, cfg.Spread.FallbackFX, 1e-9)
	assert.Equal(t, "0 0 8 * * 1-5", cfg.Schedule.DailyCron)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	content := `
telegram:
  bot_token: "token123"
  chat_id: 42
instruments:
  - symbol: "^GSPC"
    name: "S&P 500"
    class: index
    market: us
acquisition:
  history_bars: 250
  pacing: 2s
  min_delay: 500ms
  max_delay: 5s
spread:
  threshold_pct: 1.5
  fallback_fx: 1350
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "token123", cfg.Telegram.BotToken)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.True(t, cfg.TelegramConfigured())
	require.Len(t, cfg.Instruments, 1)
	assert.Equal(t, "^GSPC", cfg.Instruments[0].Symbol)
	assert.Equal(t, 250, cfg.Acquisition.HistoryBars)
	assert.Equal(t, 2*time.Second, cfg.Acquisition.Pacing)
	assert.Equal(t, 500*time.Millisecond, cfg.Acquisition.MinDelay)
	assert.InDelta(t, 1.5, cfg.Spread.ThresholdPct, 1e-9)
	assert.InDelta(t, 1350.0, cfg.Spread.FallbackFX, 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "77")
	t.Setenv("ALPHAVANTAGE_API_KEY", "av-key")
	t.Setenv("FRED_API_KEY", "fred-key")
	t.Setenv("CRON_DAILY", "0 30 7 * * *")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, int64(77), cfg.Telegram.ChatID)
	assert.Equal(t, "av-key", cfg.Providers.AlphaVantageKey)
	assert.Equal(t, "fred-key", cfg.Providers.FREDKey)
	assert.Equal(t, "0 30 7 * * *", cfg.Schedule.DailyCron)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Instruments = nil
	assert.Error(t, cfg.Validate())

	cfg, _ = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Instruments[0].Symbol = ""
	assert.Error(t, cfg.Validate())

	cfg, _ = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Acquisition.MinDelay = 20 * time.Second
	assert.Error(t, cfg.Validate())

	cfg, _ = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Spread.FallbackFX = -1
	assert.Error(t, cfg.Validate())
}

func TestRequests(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	reqs := cfg.Requests()
	require.Len(t, reqs, len(cfg.Instruments))
	assert.Equal(t, cfg.Instruments[0].Symbol, reqs[0].Symbol)
}
