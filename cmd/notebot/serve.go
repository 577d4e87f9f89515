package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdelaire/notebot/adapters/telegram_client"
	"github.com/jdelaire/notebot/adapters/telegram_receiver"
	"github.com/jdelaire/notebot/core"
	"github.com/jdelaire/notebot/core/ratelimit"
	"github.com/jdelaire/notebot/core/session"
	"github.com/jdelaire/notebot/internal/config"
	"github.com/jdelaire/notebot/internal/configwatch"
	"github.com/jdelaire/notebot/internal/notes"
)

const (
	setCommandsTimeout = 10 * time.Second
	configPollInterval = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.RequireToken(); err != nil {
		return err
	}

	logger, level := newLogger(cmd.ErrOrStderr(), cfg.Log)

	store, err := notes.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.File != "" {
		logger.Info("config loaded", "file", cfg.File)
		go watchConfig(cfg.File, level, logger).Run(ctx)
	}

	client := telegram_client.New(cfg.Telegram.Token).WithBaseURL(cfg.Telegram.BaseURL)
	publishCommands(ctx, client, logger)

	sessions := session.New(cfg.Session.TTL)
	go sessions.Run(ctx, cfg.Session.SweepInterval, func(n int) {
		if n > 0 {
			logger.Debug("idle sessions evicted", "count", n, "remaining", sessions.Len())
		}
	})

	gate := ratelimit.New(store, cfg.Notes.Cooldown)
	dispatcher := core.NewDispatcher(client, store, sessions, gate, logger).
		WithWorkers(cfg.Dispatcher.Workers)

	var receiver core.Receiver = telegram_receiver.New(cfg.Telegram.Token, dispatcher.Submit, logger).
		WithBaseURL(cfg.Telegram.BaseURL)

	logger.Info("notebot started",
		"database", cfg.Database.Path,
		"workers", cfg.Dispatcher.Workers,
		"cooldown", gate.Cooldown().String(),
	)
	err = receiver.Start(ctx)
	dispatcher.Wait()
	logger.Info("notebot stopped")
	if err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	return nil
}

// publishCommands registers the command list shown by Telegram clients.
// Failure is not fatal: /help falls back to whatever is already published.
func publishCommands(ctx context.Context, client *telegram_client.Client, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, setCommandsTimeout)
	defer cancel()
	if err := client.SetCommands(ctx, core.DefaultCommands()); err != nil {
		logger.Warn("failed to publish bot commands", "error", err)
	}
}

// watchConfig re-applies log.level whenever file changes. --verbose only sets
// the level the process starts with; a later edit of the file wins.
func watchConfig(file string, level *slog.LevelVar, logger *slog.Logger) *configwatch.Watcher {
	return configwatch.New(file, configPollInterval, logger, func() { reloadLogLevel(file, level, logger) })
}

// reloadLogLevel re-reads the config file and applies its log level. Other
// settings need a restart.
func reloadLogLevel(file string, level *slog.LevelVar, logger *slog.Logger) {
	cfg, err := config.Load(file)
	if err != nil {
		logger.Warn("config reload failed", "error", err)
		return
	}
	if next := cfg.Log.SlogLevel(); next != level.Level() {
		level.Set(next)
		logger.Info("log level changed", "level", next.String())
	}
}
