// Package config provides configuration management for the alert service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Priyanshu525/trading-alert/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Oanda    OandaConfig    `mapstructure:"oanda"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Symbols  []string       `mapstructure:"symbols"`
}

// OandaConfig holds quote-provider configuration.
type OandaConfig struct {
	Environment string `mapstructure:"environment"` // "practice", "live"
	Token       string `mapstructure:"token"`
}

// BaseURL returns the upstream base address for the configured environment.
func (o OandaConfig) BaseURL() string {
	if o.Environment == "live" {
		return "https://api-fxtrade.oanda.com"
	}
	return "https://api-fxpractice.oanda.com"
}

// TelegramConfig holds notification-provider configuration.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// EngineConfig holds evaluation-engine configuration.
type EngineConfig struct {
	PollIntervalSeconds float64     `mapstructure:"poll_interval_seconds"`
	Touch               TouchConfig `mapstructure:"touch"`
}

// PollInterval returns the poll interval as a duration.
func (e EngineConfig) PollInterval() time.Duration {
	return time.Duration(e.PollIntervalSeconds * float64(time.Second))
}

// TouchConfig is the tolerance table for "touch" alerts. A fixed tolerance
// in price units is not equally meaningful across instruments of very
// different tick sizes, so instrument classes get their own value keyed by
// instrument-code prefix.
type TouchConfig struct {
	DefaultTolerance float64     `mapstructure:"default_tolerance"`
	Rules            []TouchRule `mapstructure:"rules"`
}

// TouchRule maps an instrument-code prefix to a touch tolerance.
type TouchRule struct {
	Prefix    string  `mapstructure:"prefix"`
	Tolerance float64 `mapstructure:"tolerance"`
}

// ToleranceFor returns the touch tolerance for an instrument code. The first
// matching rule wins; unmatched instruments use the default.
func (t TouchConfig) ToleranceFor(instrument string) float64 {
	for _, r := range t.Rules {
		if strings.HasPrefix(instrument, r.Prefix) {
			return r.Tolerance
		}
	}
	return t.DefaultTolerance
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds control-surface configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/alertd"
	}
	return filepath.Join(home, ".config", "alertd")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("oanda.environment", "practice")
	v.SetDefault("engine.poll_interval_seconds", 2.0)
	v.SetDefault("engine.touch.default_tolerance", 0.0001)
	v.SetDefault("engine.touch.rules", []map[string]interface{}{
		{"prefix": "XAU_", "tolerance": 0.5},
		{"prefix": "XAG_", "tolerance": 0.05},
	})
	v.SetDefault("storage.path", filepath.Join(configDir, "alerts.db"))
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("symbols", models.DefaultSymbols)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OANDA_TOKEN"); v != "" {
		cfg.Oanda.Token = v
	}
	if v := os.Getenv("OANDA_ENV"); v != "" {
		cfg.Oanda.Environment = strings.ToLower(v)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			cfg.Engine.PollIntervalSeconds = secs
		}
	}
	if v := os.Getenv("ALERTS_DB"); v != "" {
		cfg.Storage.Path = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Oanda.Environment != "practice" && c.Oanda.Environment != "live" {
		return fmt.Errorf("invalid oanda environment: %s (must be 'practice' or 'live')", c.Oanda.Environment)
	}
	if c.Engine.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive")
	}
	if c.Engine.Touch.DefaultTolerance < 0 {
		return fmt.Errorf("touch default_tolerance must be non-negative")
	}
	for _, r := range c.Engine.Touch.Rules {
		if r.Prefix == "" {
			return fmt.Errorf("touch rule prefix must not be empty")
		}
		if r.Tolerance < 0 {
			return fmt.Errorf("touch rule tolerance must be non-negative (prefix %s)", r.Prefix)
		}
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path must not be empty")
	}
	return nil
}
