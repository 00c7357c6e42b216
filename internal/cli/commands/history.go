package commands

import (
	"github.com/spf13/cobra"

	"testr/internal/config"
	"testr/internal/history"
	"testr/internal/ui"
)

// HistoryCommand lists recent recorded runs.
type HistoryCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(cfg *config.Config, formatter *ui.Formatter) *HistoryCommand {
	return &HistoryCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	store, err := history.Open(hc.config)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(hc.config.Flags.HistoryN)
	if err != nil {
		return err
	}
	hc.formatter.PrintHistory(entries)
	return nil
}
