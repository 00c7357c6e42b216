package commands

import (
	"testr/internal/cli"
	"testr/internal/config"
	"testr/internal/runner"
	"testr/internal/storage"
	"testr/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Dashboard *DashboardCommand
	Run       *RunCommand
	History   *HistoryCommand
	Forget    *ForgetCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	source := runner.NewPytestRunner(cfg)
	jsonStorage := storage.NewJSONStorage(cfg)
	presenter := ui.NewPresenter()
	formatter := ui.NewFormatter()

	return &Commands{
		Dashboard: NewDashboardCommand(cfg, source, jsonStorage, presenter),
		Run:       NewRunCommand(cfg, source, jsonStorage, formatter),
		History:   NewHistoryCommand(cfg, formatter),
		Forget:    NewForgetCommand(cfg, jsonStorage),
	}
}

// ExitCode mirrors the delegated engine's exit code for whichever
// command launched a run.
func (c *Commands) ExitCode() int {
	if c.Dashboard.exitCode != 0 {
		return c.Dashboard.exitCode
	}
	return c.Run.exitCode
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.Flags = flags.ToConfigFlags()
		return nil
	}

	filterFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&flags.Keyword, "keyword", "k", "", "Only run tests matching this pytest expression")
		cmd.Flags().StringVarP(&flags.Markers, "markers", "m", "", "Only run tests with the given pytest markers")
		cmd.Flags().StringArrayVar(&flags.Extra, "extra", nil, "Additional raw pytest args (repeatable, passed through verbatim)")
		cmd.Flags().BoolVar(&flags.UseLast, "use-last", false, "Reuse the most recently saved paths/filters and ignore the provided ones")
		cmd.Flags().BoolVar(&flags.SaveLast, "save-last", true, "Save current paths/filters for reuse")
		cmd.Flags().BoolVar(&flags.ForgetLast, "forget-last", false, "Clear any saved paths/filters before running and do not save this run")
	}

	// Dashboard command
	dashboardCmd := &cobra.Command{
		Use:     "dashboard [paths...]",
		Short:   "Launch the live pytest dashboard",
		Long:    "Run pytest with live progress, grouped failures and keyboard-driven reruns",
		RunE:    c.Dashboard.Execute,
		PreRunE: applyFlags,
	}
	filterFlags(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:     "run [paths...]",
		Short:   "Run pytest headlessly with live progress",
		Long:    "Execute one pytest run without the TUI; the exit code mirrors pytest's",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	filterFlags(runCmd)
	rootCmd.AddCommand(runCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:     "history",
		Short:   "Show recent test runs",
		Long:    "List run summaries recorded in the per-user history database",
		RunE:    c.History.Execute,
		PreRunE: applyFlags,
	}
	historyCmd.Flags().IntVarP(&flags.HistoryN, "count", "n", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)

	// Forget command
	forgetCmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete the saved filter record",
		RunE:  c.Forget.Execute,
	}
	rootCmd.AddCommand(forgetCmd)
}
