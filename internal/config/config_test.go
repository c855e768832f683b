package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdirTemp changes into a fresh temp dir for the duration of the test,
// restoring the previous working directory on cleanup.
func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Error(err)
		}
	})
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Metrics.WindowDays != 30 {
		t.Errorf("Expected WindowDays to be 30, got %d", cfg.Metrics.WindowDays)
	}
	if cfg.Alerting.DedupWindowHours != 24 {
		t.Errorf("Expected DedupWindowHours to be 24, got %d", cfg.Alerting.DedupWindowHours)
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config is valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "window days at maximum",
			mutate:  func(c *Config) { c.Metrics.WindowDays = 365 },
			wantErr: false,
		},
		{
			name:    "window days too high",
			mutate:  func(c *Config) { c.Metrics.WindowDays = 366 },
			wantErr: true,
		},
		{
			name:    "window days zero",
			mutate:  func(c *Config) { c.Metrics.WindowDays = 0 },
			wantErr: true,
		},
		{
			name:    "dedup window too long",
			mutate:  func(c *Config) { c.Alerting.DedupWindowHours = 169 },
			wantErr: true,
		},
		{
			name:    "predict lookback too short",
			mutate:  func(c *Config) { c.Predict.LookbackDays = 13 },
			wantErr: true,
		},
		{
			name:    "trend retention too short",
			mutate:  func(c *Config) { c.Retention.TrendDays = 29 },
			wantErr: true,
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "empty schedule",
			mutate:  func(c *Config) { c.Monitor.Schedule = "" },
			wantErr: true,
		},
		{
			name:    "known disabled check",
			mutate:  func(c *Config) { c.Alerting.DisabledChecks = []string{"communication_gap"} },
			wantErr: false,
		},
		{
			name:    "unknown disabled check",
			mutate:  func(c *Config) { c.Alerting.DisabledChecks = []string{"sentiment_decine"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  path: /tmp/tp.db
metrics:
  window_days: 14
alerting:
  dedup_window_hours: 48
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/tp.db" {
		t.Errorf("Expected database path override, got %q", cfg.Database.Path)
	}
	if cfg.Metrics.WindowDays != 14 {
		t.Errorf("Expected WindowDays 14, got %d", cfg.Metrics.WindowDays)
	}
	if cfg.Alerting.DedupWindowHours != 48 {
		t.Errorf("Expected DedupWindowHours 48, got %d", cfg.Alerting.DedupWindowHours)
	}
	// Unset fields keep their defaults.
	if cfg.Predict.LookbackDays != 60 {
		t.Errorf("Expected default LookbackDays 60, got %d", cfg.Predict.LookbackDays)
	}
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no file should succeed: %v", err)
	}
	if cfg.Metrics.WindowDays != 30 {
		t.Errorf("Expected defaults, got WindowDays %d", cfg.Metrics.WindowDays)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() with missing explicit path should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TEAMPULSE_METRICS_WINDOW_DAYS", "7")
	t.Setenv("TEAMPULSE_DB_PATH", ":memory:")

	chdirTemp(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Metrics.WindowDays != 7 {
		t.Errorf("Expected env override 7, got %d", cfg.Metrics.WindowDays)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Expected env override :memory:, got %q", cfg.Database.Path)
	}
}

func TestEnvOverrideInvalidInt(t *testing.T) {
	t.Setenv("TEAMPULSE_METRICS_WINDOW_DAYS", "not-a-number")

	chdirTemp(t)
	if _, err := Load(""); err == nil {
		t.Fatal("Load() should fail on unparsable env int")
	}
}

func TestEnvOverrideOutOfRange(t *testing.T) {
	t.Setenv("TEAMPULSE_ALERT_DEDUP_HOURS", "500")

	chdirTemp(t)
	if _, err := Load(""); err == nil {
		t.Fatal("Load() should fail validation on out-of-range env value")
	}
}
