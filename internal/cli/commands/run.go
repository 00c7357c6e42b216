package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"testr/internal/config"
	"testr/internal/domain"
	"testr/internal/history"
	"testr/internal/runner"
	"testr/internal/session"
	"testr/internal/storage"
	"testr/internal/ui"
)

// RunCommand executes one headless run with a live progress bar.
type RunCommand struct {
	config    *config.Config
	source    runner.EventSource
	storage   storage.Storage
	formatter *ui.Formatter
	exitCode  int
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, source runner.EventSource, st storage.Storage, formatter *ui.Formatter) *RunCommand {
	return &RunCommand{
		config:    cfg,
		source:    source,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	rc.config.LoadDotenv()

	spec, err := resolveSpec(rc.config, rc.storage, args)
	if err != nil {
		return err
	}

	var recorder session.Recorder
	if store, err := history.Open(rc.config); err != nil {
		color.Yellow("Warning: run history unavailable: %v", err)
	} else {
		recorder = store
		defer store.Close()
	}

	var mu sync.Mutex
	bar := ui.NewProgressBar(-1)
	var sess *session.Session
	sess = session.New(rc.source, recorder, session.Callbacks{
		OnUpdate: func() {
			mu.Lock()
			defer mu.Unlock()
			snap := sess.Snapshot()
			if snap.Run.TotalCollected > 0 {
				bar.SetTotal(snap.Run.TotalCollected)
			}
			bar.Update(
				snap.Run.Counts[domain.VerdictPassed],
				snap.Run.Counts.Failures(),
				snap.Run.Counts[domain.VerdictSkipped],
			)
		},
	})

	if err := sess.StartRun(context.Background(), spec); err != nil {
		return fmt.Errorf("launch test run: %w", err)
	}
	sess.Wait()
	bar.Finish()

	run := sess.Snapshot().Run
	rc.formatter.PrintRunStats(run)
	if run.Counts.Failures() > 0 {
		rc.formatter.PrintFailures(run)
	}

	rc.exitCode = sess.ExitCode()
	return nil
}
