package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override config.yml.
const (
	envBotToken = "RESOURCEBOT_TOKEN"
	envDBPath   = "RESOURCEBOT_DB"
	envLogFile  = "RESOURCEBOT_LOG_FILE"
)

// loadConfig reads path on top of the defaults, applies .env and
// environment overrides, then sanitizes the result. A missing file is not an
// error.
func loadConfig(path string) (*Config, []string, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	cfg := defaultConfigTemplate()
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("No config file, using defaults", "file", path)
	case err != nil:
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	corrected := sanitizeConfig(&cfg)
	return &cfg, corrected, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envBotToken)); v != "" {
		cfg.BotToken = v
	}
	if v := strings.TrimSpace(os.Getenv(envDBPath)); v != "" {
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// requireToken fails when no bot token was configured.
func requireToken(cfg *Config) error {
	if cfg.BotToken == "" {
		return fmt.Errorf("bot_token empty: set it in the config file or %s", envBotToken)
	}
	return nil
}

// redactedToken hides all but the last four characters of the token.
func redactedToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
