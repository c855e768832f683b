// Package config loads engine configuration from an optional YAML file with
// environment variable overrides. Precedence: defaults < file < environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no explicit path is given.
const DefaultPath = ".teampulse/config.yaml"

// Config is the full engine configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Alerting  AlertingConfig  `yaml:"alerting"`
	Predict   PredictConfig   `yaml:"predict"`
	Retention RetentionConfig `yaml:"retention"`
	Monitor   MonitorConfig   `yaml:"monitor"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	// Path is the SQLite file path. ":memory:" creates an in-memory database.
	Path string `yaml:"path"`
}

// MetricsConfig controls health metric reports.
type MetricsConfig struct {
	// WindowDays is the default report window. Range: 1-365.
	WindowDays int `yaml:"window_days"`
}

// AlertingConfig controls the early-warning engine.
type AlertingConfig struct {
	// DedupWindowHours suppresses repeat alerts of the same type within this
	// many hours. Range: 1-168.
	DedupWindowHours int `yaml:"dedup_window_hours"`

	// NotifyRatePerMinute caps manager notification fan-out. Range: 1-600.
	NotifyRatePerMinute int `yaml:"notify_rate_per_minute"`

	// DisabledChecks names early-warning checks to skip, e.g.
	// "communication_gap". Unknown names are rejected by Validate.
	DisabledChecks []string `yaml:"disabled_checks"`
}

// PredictConfig controls the predictive models.
type PredictConfig struct {
	// LookbackDays is how far back session history feeds the models.
	// Range: 14-365.
	LookbackDays int `yaml:"lookback_days"`
}

// RetentionConfig controls periodic purging of engine-owned data.
type RetentionConfig struct {
	// TrendDays is how long trend points are kept. Range: 30-3650.
	TrendDays int `yaml:"trend_days"`

	// AlertDays is how long resolved and dismissed alerts are kept.
	// Range: 7-3650.
	AlertDays int `yaml:"alert_days"`
}

// MonitorConfig controls the scheduled monitoring loop.
type MonitorConfig struct {
	// Schedule is a cron expression for automatic monitoring runs.
	Schedule string `yaml:"schedule"`
}

// knownChecks mirrors the alert types the alerting package registers.
var knownChecks = map[string]bool{
	"sentiment_decline":    true,
	"engagement_drop":      true,
	"blocker_increase":     true,
	"productivity_concern": true,
	"team_member_burnout":  true,
	"communication_gap":    true,
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: ".teampulse/teampulse.db"},
		Metrics:  MetricsConfig{WindowDays: 30},
		Alerting: AlertingConfig{
			DedupWindowHours:    24,
			NotifyRatePerMinute: 60,
		},
		Predict:   PredictConfig{LookbackDays: 60},
		Retention: RetentionConfig{TrendDays: 365, AlertDays: 90},
		Monitor:   MonitorConfig{Schedule: "0 9 * * MON-FRI"},
	}
}

// Load reads the config file at path, applies environment overrides, and
// validates the result. A missing file is not an error when the path is the
// default; defaults plus environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Default config file is optional.
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays TEAMPULSE_* environment variables.
func (c *Config) applyEnv() error {
	if err := parseEnvString("TEAMPULSE_DB_PATH", &c.Database.Path); err != nil {
		return err
	}
	if err := parseEnvInt("TEAMPULSE_METRICS_WINDOW_DAYS", &c.Metrics.WindowDays); err != nil {
		return err
	}
	if err := parseEnvInt("TEAMPULSE_ALERT_DEDUP_HOURS", &c.Alerting.DedupWindowHours); err != nil {
		return err
	}
	if err := parseEnvInt("TEAMPULSE_NOTIFY_RATE_PER_MINUTE", &c.Alerting.NotifyRatePerMinute); err != nil {
		return err
	}
	if err := parseEnvInt("TEAMPULSE_PREDICT_LOOKBACK_DAYS", &c.Predict.LookbackDays); err != nil {
		return err
	}
	if err := parseEnvInt("TEAMPULSE_RETENTION_TREND_DAYS", &c.Retention.TrendDays); err != nil {
		return err
	}
	if err := parseEnvInt("TEAMPULSE_RETENTION_ALERT_DAYS", &c.Retention.AlertDays); err != nil {
		return err
	}
	if err := parseEnvString("TEAMPULSE_MONITOR_SCHEDULE", &c.Monitor.Schedule); err != nil {
		return err
	}
	return nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Metrics.WindowDays < 1 || c.Metrics.WindowDays > 365 {
		return fmt.Errorf("metrics.window_days must be between 1 and 365 (got %d)", c.Metrics.WindowDays)
	}
	if c.Alerting.DedupWindowHours < 1 || c.Alerting.DedupWindowHours > 168 {
		return fmt.Errorf("alerting.dedup_window_hours must be between 1 and 168 (got %d)", c.Alerting.DedupWindowHours)
	}
	if c.Alerting.NotifyRatePerMinute < 1 || c.Alerting.NotifyRatePerMinute > 600 {
		return fmt.Errorf("alerting.notify_rate_per_minute must be between 1 and 600 (got %d)", c.Alerting.NotifyRatePerMinute)
	}
	for _, name := range c.Alerting.DisabledChecks {
		if !knownChecks[name] {
			return fmt.Errorf("alerting.disabled_checks contains unknown check %q", name)
		}
	}
	if c.Predict.LookbackDays < 14 || c.Predict.LookbackDays > 365 {
		return fmt.Errorf("predict.lookback_days must be between 14 and 365 (got %d)", c.Predict.LookbackDays)
	}
	if c.Retention.TrendDays < 30 || c.Retention.TrendDays > 3650 {
		return fmt.Errorf("retention.trend_days must be between 30 and 3650 (got %d)", c.Retention.TrendDays)
	}
	if c.Retention.AlertDays < 7 || c.Retention.AlertDays > 3650 {
		return fmt.Errorf("retention.alert_days must be between 7 and 3650 (got %d)", c.Retention.AlertDays)
	}
	if c.Monitor.Schedule == "" {
		return fmt.Errorf("monitor.schedule must not be empty")
	}
	return nil
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	*dest = value
	return nil
}
