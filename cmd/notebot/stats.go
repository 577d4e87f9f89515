package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/jdelaire/notebot/core/stats"
	"github.com/jdelaire/notebot/internal/config"
	"github.com/jdelaire/notebot/internal/notes"
)

var (
	statsUser int64
	statsChat int64
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	periodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many notes a user wrote, per month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		store, err := notes.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		summary, err := stats.Aggregate(cmd.Context(), store, statsUser, statsChat)
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), summary)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int64Var(&statsUser, "user", 0, "Telegram user id")
	statsCmd.Flags().Int64Var(&statsChat, "chat", 0, "Telegram chat id")
	_ = statsCmd.MarkFlagRequired("user")
	_ = statsCmd.MarkFlagRequired("chat")
	rootCmd.AddCommand(statsCmd)
}

func printStats(w io.Writer, s stats.Summary) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Notes written: %d", s.Total)))
	if len(s.Months) == 0 {
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(headerStyle.Render("PERIOD"), headerStyle.Render("NOTES"))
	for _, m := range s.Months {
		tbl.AddRow(periodStyle.Render(m.Period()), countStyle.Render(fmt.Sprint(m.Count)))
	}
	fmt.Fprintln(w, tbl)
}
