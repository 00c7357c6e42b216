package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"testr/internal/domain"
	"testr/internal/session"
)

const helpText = " r = rerun failures | s = rerun selected | a = run all | x = stop run | enter/space = select row | q = quit "

// Dashboard is the interactive TUI: live output on the left, failure
// groups in the middle, failure details on the right.
type Dashboard struct {
	app       *tview.Application
	sess      *session.Session
	presenter *Presenter

	summaryView *tview.TextView
	logView     *tview.TextView
	failTable   *tview.Table
	detailView  *tview.TextView
	noticeView  *tview.TextView

	stopped atomic.Bool // no more queued updates once the app stops
	rows    []FailureRow // last projection, index-aligned with table rows
}

// NewDashboard builds the dashboard around a session. The session's
// callbacks must be wired with Callbacks() before starting a run.
func NewDashboard(presenter *Presenter) *Dashboard {
	d := &Dashboard{
		app:       tview.NewApplication(),
		presenter: presenter,
	}

	d.summaryView = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	d.summaryView.SetBorder(true).SetTitle(" Run ")

	d.logView = tview.NewTextView().SetDynamicColors(false).SetWrap(false).SetScrollable(true)
	d.logView.SetBorder(true).SetTitle(" Live Output ")
	d.logView.SetChangedFunc(func() { d.logView.ScrollToEnd() })

	d.failTable = tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	d.failTable.SetBorder(true).SetTitle(" Failures by file / feature ")

	d.detailView = tview.NewTextView().SetDynamicColors(false).SetWrap(true).SetWordWrap(true)
	d.detailView.SetBorder(true).SetTitle(" Failure Details ")

	d.noticeView = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	d.noticeView.SetText(helpText)

	main := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(d.logView, 0, 1, false).
		AddItem(d.failTable, 0, 1, true).
		AddItem(d.detailView, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.summaryView, 3, 0, false).
		AddItem(main, 0, 1, true).
		AddItem(d.noticeView, 1, 0, false)

	d.failTable.SetSelectionChangedFunc(func(row, column int) {
		d.renderDetail(row)
	})

	d.app.SetRoot(layout, true).SetFocus(d.failTable)
	d.app.SetInputCapture(d.handleKey)

	return d
}

// Bind attaches the session after construction (the session needs the
// dashboard's callbacks and vice versa).
func (d *Dashboard) Bind(sess *session.Session) {
	d.sess = sess
}

// Callbacks returns the session callbacks that drive this dashboard.
// Updates are queued onto the tview event loop; they arrive from the
// run's consumer goroutine. Once the app has stopped nothing drains
// the queue anymore, so queuing is gated on the stopped flag.
func (d *Dashboard) Callbacks() session.Callbacks {
	queue := func(fn func()) {
		if d.stopped.Load() {
			return
		}
		d.app.QueueUpdateDraw(fn)
	}
	return session.Callbacks{
		OnUpdate: func() {
			queue(d.refresh)
		},
		OnOutput: func(line string) {
			queue(func() {
				fmt.Fprintln(d.logView, line)
			})
		},
		OnNotice: func(msg string) {
			queue(func() {
				d.noticeView.SetText("[yellow]" + tview.Escape(msg) + "[white]")
			})
		},
		OnQuit: func() {
			d.stopped.Store(true)
			d.app.Stop()
		},
	}
}

// Run starts the initial test run and blocks in the tview event loop
// until quit.
func (d *Dashboard) Run(ctx context.Context, spec domain.FilterSpec) error {
	go func() {
		_ = d.sess.StartRun(ctx, spec)
	}()
	err := d.app.Run()
	d.stopped.Store(true)
	if err != nil {
		return fmt.Errorf("terminal unavailable: %w", err)
	}
	return nil
}

// handleKey maps single keys to session commands. Commands run off
// the event-loop goroutine: their callbacks queue draws, which would
// deadlock if issued from the loop itself.
func (d *Dashboard) handleKey(event *tcell.EventKey) *tcell.EventKey {
	dispatch := func(cmd session.Command) {
		go func() {
			_ = d.sess.Apply(context.Background(), cmd)
		}()
	}

	switch event.Key() {
	case tcell.KeyCtrlC:
		dispatch(session.Command{Kind: session.CmdQuit})
		return nil
	case tcell.KeyEnter:
		d.toggleFocusedGroup()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'r':
			dispatch(session.Command{Kind: session.CmdRerunFailed})
			return nil
		case 's':
			dispatch(session.Command{Kind: session.CmdRerunSelected})
			return nil
		case 'a':
			dispatch(session.Command{Kind: session.CmdRerunAll})
			return nil
		case 'x':
			dispatch(session.Command{Kind: session.CmdStop})
			return nil
		case 'q':
			dispatch(session.Command{Kind: session.CmdQuit})
			return nil
		case ' ':
			d.toggleFocusedGroup()
			return nil
		}
	}
	return event
}

// toggleFocusedGroup toggles selection of every member of the focused
// failure row. The toggles run in one goroutine so selection order
// follows the row's member order.
func (d *Dashboard) toggleFocusedGroup() {
	row, _ := d.failTable.GetSelection()
	idx := row - 1 // header row
	if idx < 0 || idx >= len(d.rows) {
		return
	}
	nodeids := append([]string(nil), d.rows[idx].NodeIDs...)
	go func() {
		for _, nodeid := range nodeids {
			_ = d.sess.Apply(context.Background(), session.Command{
				Kind:   session.CmdToggleSelection,
				NodeID: nodeid,
			})
		}
	}()
}

// refresh re-projects the whole dashboard from a fresh snapshot.
func (d *Dashboard) refresh() {
	snap := d.sess.Snapshot()

	d.summaryView.SetText(d.presenter.Summary(snap))
	d.rows = d.presenter.FailureRows(snap)

	selectedRow, _ := d.failTable.GetSelection()
	d.failTable.Clear()
	for col, title := range []string{"File / Feature", "Count", "Tests"} {
		d.failTable.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
	for i, row := range d.rows {
		key := row.Key
		if row.Selected {
			key = "* " + key
		}
		d.failTable.SetCell(i+1, 0, tview.NewTableCell(tview.Escape(key)))
		d.failTable.SetCell(i+1, 1, tview.NewTableCell(fmt.Sprintf("%d", row.Count)))
		d.failTable.SetCell(i+1, 2, tview.NewTableCell(tview.Escape(row.Members)))
	}
	if len(d.rows) > 0 {
		if selectedRow < 1 || selectedRow > len(d.rows) {
			selectedRow = 1
		}
		d.failTable.Select(selectedRow, 0)
		d.renderDetail(selectedRow)
	} else {
		d.detailView.SetText("")
	}
}

// renderDetail fills the right pane for the given table row.
func (d *Dashboard) renderDetail(row int) {
	idx := row - 1
	if idx < 0 || idx >= len(d.rows) {
		return
	}
	snap := d.sess.Snapshot()
	text := d.presenter.Detail(snap, d.rows[idx].NodeIDs, d.sess.FailureDetail)
	d.detailView.SetText(text)
}
