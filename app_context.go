package main

import (
	"log/slog"
	"time"
)

// AppContext holds the application dependencies shared by every command.
type AppContext struct {
	Config    *Config
	Store     ResourceStore
	Commands  *CommandRegistry
	StartTime time.Time
	// DBPath is the database file, used by !ping to report free space.
	DBPath string
}

// InitApp initializes the application context
func InitApp(cfg *Config, st ResourceStore) *AppContext {
	app := &AppContext{
		Config:    cfg,
		Store:     st,
		Commands:  SetupCommandRegistry(),
		StartTime: time.Now(),
	}
	if cfg != nil {
		app.DBPath = cfg.Database.Path
	}
	return app
}

// Uptime returns how long the bot has been running.
func (ctx *AppContext) Uptime() time.Duration {
	return time.Since(ctx.StartTime)
}

func (ctx *AppContext) LogError(msg string, args ...any) {
	slog.Error(msg, args...)
}

func (ctx *AppContext) LogInfo(msg string, args ...any) {
	slog.Info(msg, args...)
}
