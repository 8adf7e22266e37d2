package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndTemplate(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "practice", cfg.Oanda.Environment)
	assert.Equal(t, "https://api-fxpractice.oanda.com", cfg.Oanda.BaseURL())
	assert.Equal(t, 2*time.Second, cfg.Engine.PollInterval())
	assert.Equal(t, 0.0001, cfg.Engine.Touch.DefaultTolerance)
	assert.NotEmpty(t, cfg.Symbols)
	assert.NotEmpty(t, cfg.Storage.Path)

	// First run writes a commented template
	cfg2, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Oanda.Environment, cfg2.Oanda.Environment)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OANDA_TOKEN", "env-token")
	t.Setenv("OANDA_ENV", "LIVE")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-bot")
	t.Setenv("TELEGRAM_CHAT_ID", "env-chat")
	t.Setenv("POLL_INTERVAL", "0.5")
	t.Setenv("ALERTS_DB", "/tmp/env-alerts.db")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Oanda.Token)
	assert.Equal(t, "live", cfg.Oanda.Environment)
	assert.Equal(t, "https://api-fxtrade.oanda.com", cfg.Oanda.BaseURL())
	assert.Equal(t, "env-bot", cfg.Telegram.BotToken)
	assert.Equal(t, "env-chat", cfg.Telegram.ChatID)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.PollInterval())
	assert.Equal(t, "/tmp/env-alerts.db", cfg.Storage.Path)
}

func TestToleranceFor(t *testing.T) {
	touch := TouchConfig{
		DefaultTolerance: 0.0001,
		Rules: []TouchRule{
			{Prefix: "XAU_", Tolerance: 0.5},
			{Prefix: "XAG_", Tolerance: 0.05},
		},
	}

	assert.Equal(t, 0.5, touch.ToleranceFor("XAU_USD"))
	assert.Equal(t, 0.05, touch.ToleranceFor("XAG_USD"))
	assert.Equal(t, 0.0001, touch.ToleranceFor("EUR_USD"))
	assert.Equal(t, 0.0001, touch.ToleranceFor("GBP_JPY"))
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Oanda:   OandaConfig{Environment: "practice"},
		Engine:  EngineConfig{PollIntervalSeconds: 2, Touch: TouchConfig{DefaultTolerance: 0.0001}},
		Storage: StorageConfig{Path: "/tmp/alerts.db"},
	}
	assert.NoError(t, valid.Validate())

	bad := *valid
	bad.Oanda.Environment = "sandbox"
	assert.Error(t, bad.Validate())

	bad = *valid
	bad.Engine.PollIntervalSeconds = 0
	assert.Error(t, bad.Validate())

	bad = *valid
	bad.Engine.Touch.DefaultTolerance = -1
	assert.Error(t, bad.Validate())

	bad = *valid
	bad.Engine.Touch.Rules = []TouchRule{{Prefix: "", Tolerance: 0.1}}
	assert.Error(t, bad.Validate())

	bad = *valid
	bad.Storage.Path = ""
	assert.Error(t, bad.Validate())
}
