package main

type Config struct {
	BotToken string         `yaml:"bot_token"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	File           string `yaml:"file"`
	Level          string `yaml:"level"`
	RetentionHours int    `yaml:"retention_hours"`
}

type TelegramConfig struct {
	PollTimeoutSeconds int  `yaml:"poll_timeout_seconds"`
	SendsPerSecond     int  `yaml:"sends_per_second"`
	Debug              bool `yaml:"debug"`
}
