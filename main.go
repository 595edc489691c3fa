// Package main runs resourcebot, a chat bot that tracks where resources can
// be found.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"resourcebot/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	configPath string
	dbOverride string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "resourcebot",
	Short: "Chat bot that tracks where resources can be found",
	Long: `resourcebot answers bang-prefixed chat commands such as
!addResource, !whereIs and !listResources, backed by a SQLite database.

Run "resourcebot serve" to connect to Telegram, or "resourcebot console"
to type commands locally.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Telegram and answer commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := bootstrap(cmd.Context(), true, os.Stdout)
		if err != nil {
			return err
		}
		defer cleanup()
		prunePersistentLogs(app.Config.Logging.RetentionHours)
		return runTelegram(cmd.Context(), app)
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Read commands from stdin and print replies locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := bootstrap(cmd.Context(), false, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer cleanup()
		return runConsole(cmd.Context(), app, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the resources table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := bootstrap(cmd.Context(), false, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Fprintf(cmd.OutOrStdout(), "Database ready: %s\n", app.DBPath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "Database file (overrides config and "+envDBPath+")")
	rootCmd.AddCommand(serveCmd, consoleCmd, initDBCmd)
}

// bootstrap loads config, starts logging and opens the store. The returned
// cleanup closes the store.
func bootstrap(ctx context.Context, needToken bool, logOut io.Writer) (*AppContext, func(), error) {
	cfg, corrected, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if dbOverride != "" {
		cfg.Database.Path = dbOverride
	}

	setupLogger(cfg.Logging.File, cfg.Logging.Level, logOut)
	if len(corrected) > 0 {
		slog.Warn("Config values out of range, defaults applied", "fields", strings.Join(corrected, ", "))
	}

	if needToken {
		if err := requireToken(cfg); err != nil {
			return nil, nil, err
		}
	}

	db, err := openStore(ctx, cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "err", err)
		}
	}
	return InitApp(cfg, db), cleanup, nil
}

func openStore(ctx context.Context, path string) (*store.DB, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	created, err := db.EnsureSchema(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if created {
		slog.Info("Created resources table with seed row", "db", path)
	} else {
		slog.Info("Resources table ready", "db", path)
	}
	return db, nil
}

func runTelegram(ctx context.Context, app *AppContext) error {
	cfg := app.Config
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("starting telegram bot (token %s): %w", redactedToken(cfg.BotToken), err)
	}
	bot.Debug = cfg.Telegram.Debug
	slog.Info("Bot started", "username", bot.Self.UserName)

	d := NewDispatcher(app, newTelegramSender(bot, cfg.Telegram.SendsPerSecond), os.Stdout)
	return serveUpdates(ctx, bot, d, cfg.Telegram.PollTimeoutSeconds)
}

// serveUpdates starts long polling on src and dispatches until ctx is done.
func serveUpdates(ctx context.Context, src UpdateSource, d *Dispatcher, pollTimeout int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	return pumpUpdates(ctx, src.GetUpdatesChan(u), d, src.StopReceivingUpdates)
}

// pumpUpdates dispatches each update in its own goroutine until ctx is done
// or updates is closed, then waits for in-flight commands to finish.
func pumpUpdates(ctx context.Context, updates <-chan tgbotapi.Update, d *Dispatcher, stop func()) error {
	var inflight errgroup.Group
	// Commands already running finish even after shutdown starts.
	handleCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			if stop != nil {
				stop()
			}
			slog.Info("Shutting down, waiting for in-flight commands")
			return inflight.Wait()
		case update, ok := <-updates:
			if !ok {
				return inflight.Wait()
			}
			in, ok := inboundFromUpdate(update)
			if !ok {
				continue
			}
			inflight.Go(func() error {
				d.Handle(handleCtx, in)
				return nil
			})
		}
	}
}
