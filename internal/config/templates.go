package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# Reentry engine configuration

[engine]
# End-to-end resolution budget in milliseconds. Breaching the budget is
# reported to monitoring but the decision is still returned.
latency_budget_ms = 100
# Per-symbol closure event queue depth.
symbol_queue_size = 256
# Cron spec for flushing performance records to the store.
flush_interval = "@every 1m"

[risk]
# Account risk of an unscaled trade, in percent.
base_risk_percent = 1.0
# Hard ceiling on base risk scaled by a cell's risk multiplier.
max_effective_risk_percent = 3.50
# Tightest stop loss the validator accepts, in pips.
min_stop_loss_pips = 5.0

[matrix]
# Directory containing one matrix CSV per symbol (EURUSD.csv, ...).
# Defaults to <config dir>/matrix.
# dir = "/path/to/matrix"

[store]
# Defaults to <config dir>/reentry.db.
# db_path = "/path/to/reentry.db"

[logging]
level = "info"
console = true
file = true

[metrics]
enabled = true
listen_addr = "127.0.0.1:9815"
`

// createTemplateConfig writes a commented config template so a first run
// leaves the operator something to edit.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
