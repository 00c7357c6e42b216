package ui

import (
	"fmt"
	"strings"
	"time"

	"testr/internal/domain"
	"testr/internal/session"
)

// FailureRow is one renderable failure-group row.
type FailureRow struct {
	Key      string
	Count    int
	Members  string // compact member list
	NodeIDs  []string
	Selected bool // any member selected
}

// Presenter projects session state into renderable strings and rows.
// Pure: identical snapshots produce identical output.
type Presenter struct {
	now func() time.Time
}

// NewPresenter returns a presenter using wall-clock time for elapsed
// displays.
func NewPresenter() *Presenter {
	return &Presenter{now: time.Now}
}

// Summary renders the one-line run summary with tview color tags.
func (p *Presenter) Summary(snap session.Snapshot) string {
	run := snap.Run
	passed := run.Counts[domain.VerdictPassed]
	failed := run.Counts.Failures()
	skipped := run.Counts[domain.VerdictSkipped]
	completed := run.Counts.Total()

	totalDisplay := "?"
	if run.TotalCollected > 0 {
		totalDisplay = fmt.Sprintf("%d", run.TotalCollected)
	}
	elapsed := FormatDuration(run.Elapsed(p.now()))

	eta := "..."
	if run.Status == domain.RunRunning && run.TotalCollected > 0 && completed > 0 {
		remaining := run.TotalCollected - completed
		if remaining < 0 {
			remaining = 0
		}
		rate := run.Elapsed(p.now()) / time.Duration(completed)
		eta = FormatDuration(time.Duration(remaining) * rate)
	}

	return fmt.Sprintf(
		"[green]Passed[white]: %d   [red]Failed[white]: %d   [yellow]Skipped[white]: %d   "+
			"[cyan]Progress[white]: %d/%s   [magenta]Elapsed[white]: %s   [blue]ETA[white]: %s   [white]Status: %s",
		passed, failed, skipped, completed, totalDisplay, elapsed, eta, run.Status,
	)
}

// FailureRows renders one row per failure group, group order and
// member order both by first arrival.
func (p *Presenter) FailureRows(snap session.Snapshot) []FailureRow {
	rows := make([]FailureRow, 0, len(snap.Groups))
	for _, group := range snap.Groups {
		row := FailureRow{
			Key:     group.Key,
			Count:   len(group.NodeIDs),
			NodeIDs: append([]string(nil), group.NodeIDs...),
		}
		labels := make([]string, 0, len(group.NodeIDs))
		for _, id := range group.NodeIDs {
			labels = append(labels, domain.MemberLabel(id))
			if snap.Selected[id] {
				row.Selected = true
			}
		}
		row.Members = strings.Join(labels, ", ")
		rows = append(rows, row)
	}
	return rows
}

// Detail renders the verbatim failure text for every nodeid of the
// focused group, marking selected members.
func (p *Presenter) Detail(snap session.Snapshot, nodeids []string, lookup func(string) (domain.OutcomeEvent, bool)) string {
	if len(nodeids) == 0 {
		return "No details available for this row."
	}
	var b strings.Builder
	for i, nodeid := range nodeids {
		if i > 0 {
			b.WriteString("\n")
		}
		marker := "  "
		if snap.Selected[nodeid] {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s%s\n", marker, nodeid)
		evt, ok := lookup(nodeid)
		if ok && evt.FailureDetail != "" {
			b.WriteString(evt.FailureDetail)
			b.WriteString("\n")
		} else {
			b.WriteString("No traceback recorded.\n")
		}
		b.WriteString(strings.Repeat("-", 40))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDuration renders a duration as 3s / 2m05s / 1h02m03s.
func FormatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	secs = secs % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", hours, minutes, secs)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%02ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}
