package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdelaire/notebot/internal/config"
	"github.com/jdelaire/notebot/internal/export"
	"github.com/jdelaire/notebot/internal/notes"
)

var (
	exportUser   int64
	exportChat   int64
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's notes as YAML or JSON",
	Example: `  notebot export --user 42 --chat 42
  notebot export --user 42 --chat 42 --format json --output notes.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		store, err := notes.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.List(cmd.Context(), exportUser, exportChat)
		if err != nil {
			return err
		}
		doc := export.Document{
			UserID:     exportUser,
			ChatID:     exportChat,
			ExportedAt: time.Now().UTC(),
			Notes:      list,
		}

		if exportOutput == "" {
			return exporter.Export(doc, cmd.OutOrStdout())
		}
		if err := export.WriteFile(exportOutput, exporter, doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d notes to %s\n", len(list), exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().Int64Var(&exportUser, "user", 0, "Telegram user id")
	exportCmd.Flags().Int64Var(&exportChat, "chat", 0, "Telegram chat id")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "output format (yaml, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	_ = exportCmd.MarkFlagRequired("user")
	_ = exportCmd.MarkFlagRequired("chat")
	rootCmd.AddCommand(exportCmd)
}
