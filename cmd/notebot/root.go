package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdelaire/notebot/internal/config"
)

var (
	configFile string
	verbose    bool
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "notebot",
	Short: "Telegram bot that keeps dated notes",
	Long: `notebot is a Telegram bot that stores the messages you send it as notes.

Browse them by date with /notes, see how many you wrote with /stats.
Configuration is read from .notebot.yaml and NOTEBOT_* environment variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default .notebot.yaml in ./ or $NOTEBOT_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the process logger from config. --verbose forces debug.
// The returned level can be changed while the logger is in use.
func newLogger(w io.Writer, cfg config.Log) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	if verbose {
		level.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), level
	}
	return slog.New(slog.NewTextHandler(w, opts)), level
}
