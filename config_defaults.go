package main

import (
	"log/slog"
	"strings"
)

const (
	defaultConfigPath = "config.yml"
	defaultDBPath     = "tracker.db"
	defaultLogFile    = "resourcebot.log"
)

func defaultConfigTemplate() Config {
	return Config{
		Database: DatabaseConfig{Path: defaultDBPath},
		Logging:  LoggingConfig{File: defaultLogFile, Level: "info", RetentionHours: 168},
		Telegram: TelegramConfig{PollTimeoutSeconds: 60, SendsPerSecond: 20},
	}
}

// sanitizeConfig resets out-of-range values to their defaults and returns
// the names of the fields it corrected.
func sanitizeConfig(cfg *Config) []string {
	defaults := defaultConfigTemplate()
	var corrected []string

	cfg.BotToken = strings.TrimSpace(cfg.BotToken)

	if strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = defaults.Database.Path
		corrected = append(corrected, "database.path")
	}

	if _, ok := parseLogLevel(cfg.Logging.Level); !ok {
		cfg.Logging.Level = defaults.Logging.Level
		corrected = append(corrected, "logging.level")
	}
	if cfg.Logging.RetentionHours < 0 {
		cfg.Logging.RetentionHours = defaults.Logging.RetentionHours
		corrected = append(corrected, "logging.retention_hours")
	}

	// Telegram long polling caps out well below this
	if cfg.Telegram.PollTimeoutSeconds <= 0 || cfg.Telegram.PollTimeoutSeconds > 600 {
		cfg.Telegram.PollTimeoutSeconds = defaults.Telegram.PollTimeoutSeconds
		corrected = append(corrected, "telegram.poll_timeout_seconds")
	}
	if cfg.Telegram.SendsPerSecond < 0 || cfg.Telegram.SendsPerSecond > 30 {
		cfg.Telegram.SendsPerSecond = defaults.Telegram.SendsPerSecond
		corrected = append(corrected, "telegram.sends_per_second")
	}

	return corrected
}

func parseLogLevel(s string) (slog.Level, bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, false
	}
	return lvl, true
}
