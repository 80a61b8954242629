package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
	Sources   SourcesConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// DatabaseConfig holds the project store connection settings.
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	ConnectTimeout     time.Duration
}

// TaskConfig is the per-task schedule override and enable flag.
type TaskConfig struct {
	Schedule string
	Enabled  bool
}

// SchedulerConfig controls the recurring job scheduler.
type SchedulerConfig struct {
	Enabled        bool
	Timezone       string
	FullCollection TaskConfig
	PerSource      TaskConfig
	ScoreRefresh   TaskConfig
	Cleanup        TaskConfig
	SourceDelay    time.Duration // pause between consecutive source adapters
}

// SourcesConfig carries opaque credential strings, passed through untouched
// to the source adapters that need them.
type SourcesConfig struct {
	GitHubToken      string
	ProductHuntToken string
	YouTubeAPIKey    string
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultFullCollectionSchedule = "0 */6 * * *"
	defaultPerSourceSchedule      = "0 */2 * * *"
	defaultScoreRefreshSchedule   = "0 * * * *"
	defaultCleanupSchedule        = "0 3 * * *"
	defaultSourceDelay            = 2 * time.Second
)

// Load reads configuration from environment variables, applying defaults
// when values are not provided.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Port:            firstNonEmpty(os.Getenv("PORT"), getEnv("SERVER_PORT", defaultPort)),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Database: DatabaseConfig{
			URL:                os.Getenv("DATABASE_URL"),
			MaxConnections:     25,
			MaxIdleConnections: 5,
			ConnMaxLifetime:    5 * time.Minute,
			ConnectTimeout:     10 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:  getEnvBool("SCHEDULER_ENABLED", true),
			Timezone: getEnv("TIMEZONE", "UTC"),
			FullCollection: TaskConfig{
				Schedule: getEnv("FULL_COLLECTION_SCHEDULE", defaultFullCollectionSchedule),
				Enabled:  getEnvBool("FULL_COLLECTION_ENABLED", true),
			},
			PerSource: TaskConfig{
				Schedule: getEnv("SOURCE_COLLECTION_SCHEDULE", defaultPerSourceSchedule),
				Enabled:  getEnvBool("SOURCE_COLLECTION_ENABLED", true),
			},
			ScoreRefresh: TaskConfig{
				Schedule: getEnv("SCORE_REFRESH_SCHEDULE", defaultScoreRefreshSchedule),
				Enabled:  getEnvBool("SCORE_REFRESH_ENABLED", true),
			},
			Cleanup: TaskConfig{
				Schedule: getEnv("CLEANUP_SCHEDULE", defaultCleanupSchedule),
				Enabled:  getEnvBool("CLEANUP_ENABLED", true),
			},
			SourceDelay: defaultSourceDelay,
		},
		Sources: SourcesConfig{
			GitHubToken:      os.Getenv("GITHUB_TOKEN"),
			ProductHuntToken: os.Getenv("PRODUCTHUNT_TOKEN"),
			YouTubeAPIKey:    os.Getenv("YOUTUBE_API_KEY"),
		},
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("SOURCE_DELAY_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SOURCE_DELAY_SECONDS: %w", err)
		}
		cfg.Scheduler.SourceDelay = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if _, err := time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	return cfg, nil
}

// Location resolves the configured scheduler timezone.
func (c SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvBool treats any value other than an explicit "false" as true, so
// flags default to enabled.
func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value != "false"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
