package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("default port: got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10*time.Second || cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Error("default server timeouts not applied")
	}
	if cfg.Logging.Level != slog.LevelInfo || cfg.Logging.Format != "json" {
		t.Errorf("default logging: got %v/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
	if !cfg.Scheduler.Enabled {
		t.Error("scheduler should default to enabled")
	}
	if cfg.Scheduler.Timezone != "UTC" {
		t.Errorf("default timezone: got %q", cfg.Scheduler.Timezone)
	}
	if cfg.Scheduler.FullCollection.Schedule != "0 */6 * * *" {
		t.Errorf("default full collection schedule: got %q", cfg.Scheduler.FullCollection.Schedule)
	}
	if cfg.Scheduler.Cleanup.Schedule != "0 3 * * *" {
		t.Errorf("default cleanup schedule: got %q", cfg.Scheduler.Cleanup.Schedule)
	}
	if cfg.Scheduler.SourceDelay != 2*time.Second {
		t.Errorf("default source delay: got %v", cfg.Scheduler.SourceDelay)
	}
	if cfg.Database.MaxConnections != 25 {
		t.Errorf("default max connections: got %d", cfg.Database.MaxConnections)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("FULL_COLLECTION_SCHEDULE", "30 */4 * * *")
	t.Setenv("SOURCE_DELAY_SECONDS", "7")
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("PORT override: got %q", cfg.Server.Port)
	}
	if cfg.Logging.Level != slog.LevelDebug || cfg.Logging.Format != "text" {
		t.Errorf("logging overrides: got %v/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Scheduler.Enabled {
		t.Error("SCHEDULER_ENABLED=false should disable the scheduler")
	}
	if cfg.Scheduler.FullCollection.Schedule != "30 */4 * * *" {
		t.Errorf("schedule override: got %q", cfg.Scheduler.FullCollection.Schedule)
	}
	if cfg.Scheduler.SourceDelay != 7*time.Second {
		t.Errorf("source delay override: got %v", cfg.Scheduler.SourceDelay)
	}
	if cfg.Sources.GitHubToken != "ghp_test" {
		t.Errorf("github token: got %q", cfg.Sources.GitHubToken)
	}
}

func TestLoad_PortPrecedence(t *testing.T) {
	t.Setenv("PORT", "7001")
	t.Setenv("SERVER_PORT", "7002")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "7001" {
		t.Errorf("PORT should win over SERVER_PORT, got %q", cfg.Server.Port)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"bad timezone", "TIMEZONE", "Mars/Olympus"},
		{"bad timeout", "SERVER_READ_TIMEOUT_SECONDS", "ten"},
		{"negative delay", "SOURCE_DELAY_SECONDS", "-3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected an error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestSchedulerConfigLocation(t *testing.T) {
	if loc := (SchedulerConfig{Timezone: "UTC"}).Location(); loc != time.UTC {
		t.Errorf("UTC timezone: got %v", loc)
	}
	if loc := (SchedulerConfig{Timezone: "bogus"}).Location(); loc != time.UTC {
		t.Error("unresolvable timezone should fall back to UTC")
	}
}
