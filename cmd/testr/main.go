package main

import (
	"fmt"
	"os"

	"testr/internal/cli"
	"testr/internal/cli/commands"
	"testr/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "testr",
		Short:   "Live pytest dashboard for the terminal",
		Long:    `A terminal dashboard around pytest: live progress, failures grouped by file and feature, and keyboard-driven reruns of failed or selected tests.`,
		Version: version,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Mirror the delegated engine's exit code
	os.Exit(cmds.ExitCode())
}
