package app

import (
	"errors"
	"fmt"
	"time"
)

// ErrConfig marks invalid application configuration.
var ErrConfig = errors.New("invalid app config")

// Config is the top-level service configuration. Auth, password and
// cookie settings load from their own packages.
type Config struct {
	// Addr is the listen address.
	Addr string

	// DatabaseURL, when empty, selects the in-memory profile. Meant for
	// local development only.
	DatabaseURL string

	// LogLevel is debug, info, warn or error.
	LogLevel string

	// LogFormat is json or pretty.
	LogFormat string

	// MigrateOnStart runs pending schema migrations before serving.
	MigrateOnStart bool

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		LogLevel:          "info",
		LogFormat:         "json",
		MigrateOnStart:    true,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// LoadConfigFromEnv builds a Config from GYMGATE_* variables on top of
// DefaultConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.Addr = envOr("GYMGATE_ADDR", cfg.Addr)
	cfg.DatabaseURL = envOr("GYMGATE_DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = envOr("GYMGATE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("GYMGATE_LOG_FORMAT", cfg.LogFormat)

	switch envOr("GYMGATE_MIGRATE_ON_START", "true") {
	case "true", "1":
		cfg.MigrateOnStart = true
	case "false", "0":
		cfg.MigrateOnStart = false
	default:
		return Config{}, fmt.Errorf("%w: GYMGATE_MIGRATE_ON_START must be a boolean", ErrConfig)
	}

	var err error
	if cfg.ShutdownTimeout, err = envDurationOr("GYMGATE_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if cfg.ReadHeaderTimeout, err = envDurationOr("GYMGATE_READ_HEADER_TIMEOUT", cfg.ReadHeaderTimeout); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrConfig)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrConfig, c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "pretty":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrConfig, c.LogFormat)
	}
	return nil
}
