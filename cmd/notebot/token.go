package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jdelaire/notebot/internal/keychain"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the Telegram bot token in the OS keychain",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Store the bot token in the OS keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok := strings.TrimSpace(args[0])
		if !strings.Contains(tok, ":") {
			return errors.New("token does not look like a Telegram bot token (<id>:<secret>)")
		}
		if err := keychain.SetToken(tok); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "token stored in keychain")
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	rootCmd.AddCommand(tokenCmd)
}
