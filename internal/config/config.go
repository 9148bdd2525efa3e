// Package config provides configuration management for the reentry engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Risk    RiskConfig    `mapstructure:"risk"`
	Matrix  MatrixConfig  `mapstructure:"matrix"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// EngineConfig holds decision engine configuration.
type EngineConfig struct {
	// LatencyBudgetMs is the end-to-end resolution budget. Breaching it
	// is a monitoring event, never a failure.
	LatencyBudgetMs int `mapstructure:"latency_budget_ms"`
	// SymbolQueueSize is the per-symbol closure event queue depth.
	SymbolQueueSize int `mapstructure:"symbol_queue_size"`
	// FlushInterval is the cron spec for persisting performance records.
	FlushInterval string `mapstructure:"flush_interval"`
}

// RiskConfig holds the hard validation limits.
type RiskConfig struct {
	// BaseRiskPercent is the account risk of an unscaled trade.
	BaseRiskPercent float64 `mapstructure:"base_risk_percent"`
	// MaxEffectiveRiskPercent is the hard ceiling on base risk scaled by
	// a cell's risk multiplier.
	MaxEffectiveRiskPercent float64 `mapstructure:"max_effective_risk_percent"`
	// MinStopLossPips is the tightest stop the validator accepts.
	MinStopLossPips float64 `mapstructure:"min_stop_loss_pips"`
}

// MatrixConfig holds matrix configuration loading settings.
type MatrixConfig struct {
	// Dir contains one CSV file per symbol (EURUSD.csv, ...).
	Dir string `mapstructure:"dir"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// MetricsConfig holds the Prometheus exposition settings.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/reentry-engine"
	}
	return filepath.Join(home, ".config", "reentry-engine")
}

// LatencyBudget returns the latency budget as a duration.
func (c *EngineConfig) LatencyBudget() time.Duration {
	return time.Duration(c.LatencyBudgetMs) * time.Millisecond
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

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
	v.SetDefault("engine.latency_budget_ms", 100)
	v.SetDefault("engine.symbol_queue_size", 256)
	v.SetDefault("engine.flush_interval", "@every 1m")

	v.SetDefault("risk.base_risk_percent", 1.0)
	v.SetDefault("risk.max_effective_risk_percent", 3.50)
	v.SetDefault("risk.min_stop_loss_pips", 5.0)

	v.SetDefault("matrix.dir", filepath.Join(configDir, "matrix"))
	v.SetDefault("store.db_path", filepath.Join(configDir, "reentry.db"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "engine.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_addr", "127.0.0.1:9815")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REENTRY_MATRIX_DIR"); v != "" {
		cfg.Matrix.Dir = v
	}
	if v := os.Getenv("REENTRY_DB_PATH"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("REENTRY_METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}
	if v := os.Getenv("REENTRY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.LatencyBudgetMs <= 0 {
		return fmt.Errorf("latency_budget_ms must be positive")
	}
	if c.Engine.SymbolQueueSize <= 0 {
		return fmt.Errorf("symbol_queue_size must be positive")
	}
	if c.Risk.BaseRiskPercent <= 0 || c.Risk.BaseRiskPercent > 100 {
		return fmt.Errorf("base_risk_percent must be in (0, 100]")
	}
	if c.Risk.MaxEffectiveRiskPercent <= 0 || c.Risk.MaxEffectiveRiskPercent > 100 {
		return fmt.Errorf("max_effective_risk_percent must be in (0, 100]")
	}
	if c.Risk.MinStopLossPips < 0 {
		return fmt.Errorf("min_stop_loss_pips must be non-negative")
	}
	if c.Matrix.Dir == "" {
		return fmt.Errorf("matrix.dir must be set")
	}
	return nil
}
