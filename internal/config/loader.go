package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Config captures the runtime configuration for the scheduler service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	ShutdownTimeout time.Duration
	LogLevel        slog.Level
}

// fileConfig mirrors Config for the optional YAML configuration file. All
// fields are optional; absent fields keep the default or environment value.
type fileConfig struct {
	HTTPPort        *int    `yaml:"http_port"`
	SQLiteDSN       *string `yaml:"sqlite_dsn"`
	ShutdownTimeout *string `yaml:"shutdown_timeout"`
	LogLevel        *string `yaml:"log_level"`
}

// Load builds the configuration in three layers: built-in defaults, then the
// optional YAML file named by FIELDOPS_CONFIG_FILE, then environment
// variables. Later layers win.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:fieldops.db?_foreign_keys=on",
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        slog.LevelInfo,
	}

	invalid := make([]string, 0, 2)

	if path := strings.TrimSpace(os.Getenv("FIELDOPS_CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if portValue := strings.TrimSpace(os.Getenv("FIELDOPS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "FIELDOPS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("FIELDOPS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("FIELDOPS_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "FIELDOPS_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if levelValue := strings.TrimSpace(os.Getenv("FIELDOPS_LOG_LEVEL")); levelValue != "" {
		level, ok := parseLogLevel(levelValue)
		if !ok {
			invalid = append(invalid, "FIELDOPS_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("configuration file %s does not exist", path)
		}
		return fmt.Errorf("read configuration file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse configuration file %s: %w", path, err)
	}

	if file.HTTPPort != nil {
		if *file.HTTPPort <= 0 {
			return fmt.Errorf("configuration file %s: http_port must be positive", path)
		}
		cfg.HTTPPort = *file.HTTPPort
	}
	if file.SQLiteDSN != nil && strings.TrimSpace(*file.SQLiteDSN) != "" {
		cfg.SQLiteDSN = strings.TrimSpace(*file.SQLiteDSN)
	}
	if file.ShutdownTimeout != nil {
		timeout, err := time.ParseDuration(strings.TrimSpace(*file.ShutdownTimeout))
		if err != nil || timeout <= 0 {
			return fmt.Errorf("configuration file %s: invalid shutdown_timeout", path)
		}
		cfg.ShutdownTimeout = timeout
	}
	if file.LogLevel != nil {
		level, ok := parseLogLevel(*file.LogLevel)
		if !ok {
			return fmt.Errorf("configuration file %s: invalid log_level %q", path, *file.LogLevel)
		}
		cfg.LogLevel = level
	}

	return nil
}

func parseLogLevel(value string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}
