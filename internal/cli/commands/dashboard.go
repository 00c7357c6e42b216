package commands

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testr/internal/config"
	"testr/internal/history"
	"testr/internal/runner"
	"testr/internal/session"
	"testr/internal/storage"
	"testr/internal/ui"
)

// DashboardCommand launches the interactive TUI.
type DashboardCommand struct {
	config    *config.Config
	source    runner.EventSource
	storage   storage.Storage
	presenter *ui.Presenter
	exitCode  int
}

// NewDashboardCommand creates a new DashboardCommand
func NewDashboardCommand(cfg *config.Config, source runner.EventSource, st storage.Storage, presenter *ui.Presenter) *DashboardCommand {
	return &DashboardCommand{
		config:    cfg,
		source:    source,
		storage:   st,
		presenter: presenter,
	}
}

// Execute runs the command
func (dc *DashboardCommand) Execute(cmd *cobra.Command, args []string) error {
	dc.config.LoadDotenv()

	spec, err := resolveSpec(dc.config, dc.storage, args)
	if err != nil {
		return err
	}

	var recorder session.Recorder
	if store, err := history.Open(dc.config); err != nil {
		color.Yellow("Warning: run history unavailable: %v", err)
	} else {
		recorder = store
		defer store.Close()
	}

	dashboard := ui.NewDashboard(dc.presenter)
	sess := session.New(dc.source, recorder, dashboard.Callbacks())
	dashboard.Bind(sess)

	if err := dashboard.Run(context.Background(), spec); err != nil {
		return err
	}
	sess.Wait()
	dc.exitCode = sess.ExitCode()
	return nil
}
