package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Lab Configuration

[pricing]
# Annualized risk-free rate used when a request omits it
risk_free_rate = 0.05
# Annualized volatility used when a request omits it
volatility = 0.25
# Days to expiry used when a request omits it
days_to_expiry = 30

[server]
# Listen address for 'optionslab serve'
addr = ":8080"
# Gin mode: debug, release, test
mode = "release"
read_timeout = "10s"
write_timeout = "30s"
shutdown_timeout = "5s"
# Maximum strategies per compare request
max_compare = 16

[store]
# Record analyses run with --save and through the HTTP API
enabled = true
# SQLite database path (defaults to history.db in this directory)
# path = ""

[logging]
# Level: debug, info, warn, error
level = "info"
console = true
# Rotate logs to file_path (defaults to logs/options-lab.log in this directory)
file = false
max_size = 50
max_backups = 5
max_age = 30

[batch]
# Worker goroutines used by 'options compare'
workers = 4

[ui]
# Enable colored output
color_enabled = true
# Payoff chart size in characters
chart_width = 60
chart_height = 15
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
