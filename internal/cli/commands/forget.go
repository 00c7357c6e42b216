package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testr/internal/config"
	"testr/internal/storage"
)

// ForgetCommand deletes the saved filter record.
type ForgetCommand struct {
	config  *config.Config
	storage storage.Storage
}

// NewForgetCommand creates a new ForgetCommand
func NewForgetCommand(cfg *config.Config, st storage.Storage) *ForgetCommand {
	return &ForgetCommand{
		config:  cfg,
		storage: st,
	}
}

// Execute runs the command
func (fc *ForgetCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := fc.storage.Forget(); err != nil {
		return err
	}
	color.Green("Saved filters cleared.")
	return nil
}
