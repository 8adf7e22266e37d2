package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# alertd configuration

[oanda]
# Quote-provider environment: "practice" or "live"
environment = "practice"
# API token (or set OANDA_TOKEN)
token = ""

[telegram]
# Bot token and recipient chat (or set TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID)
bot_token = ""
chat_id = ""

[engine]
# Seconds between evaluation cycles
poll_interval_seconds = 2.0

[engine.touch]
# Maximum |price - target| for a touch alert to fire
default_tolerance = 0.0001

# Wider tolerances for instrument classes priced in large nominal units
[[engine.touch.rules]]
prefix = "XAU_"
tolerance = 0.5

[[engine.touch.rules]]
prefix = "XAG_"
tolerance = 0.05

[storage]
# SQLite database location (or set ALERTS_DB)
# path = "/path/to/alerts.db"

[server]
addr = ":5000"
`

// createTemplateConfig writes a commented config template on first run.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
