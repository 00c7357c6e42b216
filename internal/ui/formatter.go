package ui

import (
	"fmt"

	"github.com/fatih/color"

	"testr/internal/domain"
	"testr/internal/history"
)

// Formatter prints run results for the headless surfaces.
type Formatter struct{}

// NewFormatter creates a new Formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// PrintRunStats displays the final statistics of a run.
func (f *Formatter) PrintRunStats(run domain.Run) {
	fmt.Print("\n")
	color.Cyan("╔═══════════════════════════════════════════════════════════════╗")
	color.Cyan("║                     Test Run Statistics                       ║")
	color.Cyan("╚═══════════════════════════════════════════════════════════════╝\n")

	fmt.Println("┌─────────────────────────────────┬─────────────────────────────┐")

	fmt.Printf("│ %-31s │ ", "Status")
	color.White("%-27s │\n", run.Status)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Passed")
	color.Green("%-27d │\n", run.Counts[domain.VerdictPassed])
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Failed")
	color.Red("%-27d │\n", run.Counts[domain.VerdictFailed])
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Errors")
	color.Red("%-27d │\n", run.Counts[domain.VerdictError])
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Skipped")
	color.Yellow("%-27d │\n", run.Counts[domain.VerdictSkipped])
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Duration")
	color.White("%-27s │\n", FormatDuration(run.Elapsed(run.EndedAt)))
	fmt.Println("└─────────────────────────────────┴─────────────────────────────┘")
}

// PrintFailures lists failed/errored tests with their verbatim detail.
func (f *Formatter) PrintFailures(run domain.Run) {
	printed := make(map[string]bool)
	for _, evt := range run.Events {
		if !evt.Verdict.IsFailure() || printed[evt.NodeID] {
			continue
		}
		printed[evt.NodeID] = true
		color.Red("\n✗ %s", evt.NodeID)
		if evt.FailureDetail != "" {
			fmt.Println(evt.FailureDetail)
		}
	}
}

// PrintHistory renders recent run-history entries.
func (f *Formatter) PrintHistory(entries []history.Entry) {
	if len(entries) == 0 {
		color.Yellow("No recorded runs yet")
		return
	}
	color.Cyan("%-5s %-20s %-10s %7s %7s %7s %7s  %s", "ID", "Started", "Status", "Passed", "Failed", "Errors", "Skipped", "Args")
	for _, e := range entries {
		line := fmt.Sprintf("%-5d %-20s %-10s %7d %7d %7d %7d  %s",
			e.ID, e.StartedAt.Format("2006-01-02 15:04:05"), e.Status,
			e.Passed, e.Failed, e.Errors, e.Skipped, e.Args)
		if e.Failed+e.Errors > 0 {
			color.Red("%s", line)
		} else {
			color.Green("%s", line)
		}
	}
}
