// Package config provides configuration management for the options lab.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Pricing PricingConfig `mapstructure:"pricing"`
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	Batch   BatchConfig   `mapstructure:"batch"`
	UI      UIConfig      `mapstructure:"ui"`
}

// PricingConfig holds the market defaults applied when a request omits them.
type PricingConfig struct {
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	Volatility   float64 `mapstructure:"volatility"`
	DaysToExpiry int     `mapstructure:"days_to_expiry"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxCompare      int           `mapstructure:"max_compare"`
}

// StoreConfig holds analysis history configuration.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// BatchConfig holds worker pool configuration for strategy comparison.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// UIConfig holds CLI output configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
	ChartWidth   int  `mapstructure:"chart_width"`
	ChartHeight  int  `mapstructure:"chart_height"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-lab"
	}
	return filepath.Join(home, ".config", "options-lab")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	v := viper.New()
	setDefaults(v, DefaultConfigDir())
	// Defaults are plain values; Unmarshal cannot fail on them.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced with a commented template and defaults are used.
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
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// Apply environment variable overrides
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("pricing.risk_free_rate", models.DefaultRiskFreeRate)
	v.SetDefault("pricing.volatility", models.DefaultVolatility)
	v.SetDefault("pricing.days_to_expiry", models.DefaultDaysToExpiry)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_compare", 16)

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", filepath.Join(configDir, "history.db"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "options-lab.log"))
	v.SetDefault("logging.max_size", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("batch.workers", 4)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.chart_width", 60)
	v.SetDefault("ui.chart_height", 15)
}

func applyEnvOverrides(cfg *Config) error {
	floats := []struct {
		key    string
		target *float64
	}{
		{"OPTIONSLAB_RISK_FREE_RATE", &cfg.Pricing.RiskFreeRate},
		{"OPTIONSLAB_VOLATILITY", &cfg.Pricing.Volatility},
	}
	for _, f := range floats {
		if v := os.Getenv(f.key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return apperrors.Wrapf(apperrors.ErrConfigInvalid, "%s=%q", f.key, v)
			}
			*f.target = n
		}
	}

	if v := os.Getenv("OPTIONSLAB_DAYS_TO_EXPIRY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.Wrapf(apperrors.ErrConfigInvalid, "OPTIONSLAB_DAYS_TO_EXPIRY=%q", v)
		}
		cfg.Pricing.DaysToExpiry = n
	}

	if v := os.Getenv("OPTIONSLAB_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("OPTIONSLAB_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("OPTIONSLAB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !(c.Pricing.Volatility >= 0) || math.IsInf(c.Pricing.Volatility, 0) {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "pricing.volatility must be a non-negative number")
	}
	if c.Pricing.DaysToExpiry < 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "pricing.days_to_expiry must be non-negative")
	}
	if !(c.Pricing.RiskFreeRate >= -1 && c.Pricing.RiskFreeRate <= 1) {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "pricing.risk_free_rate must be between -1 and 1")
	}

	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "invalid server mode: %s (must be debug, release or test)", c.Server.Mode)
	}
	if c.Server.MaxCompare < 1 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "server.max_compare must be at least 1")
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "store.path is required when the store is enabled")
	}

	if c.Batch.Workers < 1 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "batch.workers must be at least 1")
	}

	return nil
}

// DefaultContext returns a strategy context at spot using the configured
// pricing defaults.
func (c *Config) DefaultContext(spot float64) models.StrategyContext {
	return models.StrategyContext{
		UnderlyingPrice: spot,
		RiskFreeRate:    c.Pricing.RiskFreeRate,
		Volatility:      c.Pricing.Volatility,
		DaysToExpiry:    c.Pricing.DaysToExpiry,
	}
}
