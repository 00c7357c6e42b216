// Package session owns the single active run: it bridges the runner's
// event stream into the aggregator, dispatches UI commands, and keeps
// every mutation behind one mutex.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"testr/internal/aggregate"
	"testr/internal/domain"
	"testr/internal/runner"
)

// Recorder receives finished runs. Implemented by the history store;
// may be nil.
type Recorder interface {
	Record(run domain.Run, spec domain.FilterSpec) error
}

// Callbacks are how the session talks back to its surface. All are
// optional and invoked while no session lock is held.
type Callbacks struct {
	OnUpdate func()             // state changed; re-project
	OnNotice func(msg string)   // non-fatal, user-visible notice
	OnOutput func(line string)  // one live output line
	OnQuit   func()
}

// Snapshot is a consistent view of the session state for projection.
type Snapshot struct {
	Run      domain.Run
	Groups   []aggregate.Group
	Selected map[string]bool
	Revision uint64
}

// Session is the coordinating context. One instance per process; all
// state mutation is serialized on its mutex.
type Session struct {
	source   runner.EventSource
	recorder Recorder
	cb       Callbacks

	mu      sync.Mutex
	agg     *aggregate.Aggregator
	sel     *aggregate.Selection
	planner *aggregate.Planner
	spec    domain.FilterSpec
	runDone chan struct{}
	exit    int
}

// New creates a session around an event source. recorder may be nil.
func New(source runner.EventSource, recorder Recorder, cb Callbacks) *Session {
	agg := aggregate.NewAggregator()
	sel := aggregate.NewSelection(agg)
	return &Session{
		source:   source,
		recorder: recorder,
		cb:       cb,
		agg:      agg,
		sel:      sel,
		planner:  aggregate.NewPlanner(agg, sel),
	}
}

// StartRun launches a run for spec. Rejected while one is active.
func (s *Session) StartRun(ctx context.Context, spec domain.FilterSpec) error {
	s.mu.Lock()
	if s.agg.Active() {
		s.mu.Unlock()
		s.notice("A run is already active; ignoring new request.")
		return errors.New("a run is already active")
	}
	if !s.drained() {
		s.mu.Unlock()
		s.notice("Previous run is still winding down; try again in a moment.")
		return errors.New("previous run's event stream is still draining")
	}
	if err := s.agg.Start(spec); err != nil {
		s.mu.Unlock()
		return err
	}
	s.sel.Clear()
	s.spec = spec
	runDone := make(chan struct{})
	s.runDone = runDone
	s.mu.Unlock()
	s.update()

	events, err := s.source.Start(ctx, spec)
	if err != nil {
		// launch fault: record the diagnostic as a synthetic failure,
		// then seal the run as stopped
		s.mu.Lock()
		_ = s.agg.OnEvent(domain.OutcomeEvent{
			NodeID:        "pytest",
			Verdict:       domain.VerdictError,
			FailureDetail: "Failed to launch test run: " + err.Error(),
		})
		_ = s.agg.OnStop()
		_ = s.agg.OnComplete(1)
		s.exit = 1
		s.mu.Unlock()
		close(runDone)
		s.notice(fmt.Sprintf("Failed to launch test run: %v", err))
		s.update()
		return err
	}

	go func() {
		for evt := range events {
			s.apply(evt)
		}
		close(runDone)
	}()
	return nil
}

// drained reports whether the previous run's event stream has closed.
// A stopped run keeps delivering buffered events until then; starting a
// new run before that would feed two runs into one aggregator. Caller
// holds s.mu.
func (s *Session) drained() bool {
	if s.runDone == nil {
		return true
	}
	select {
	case <-s.runDone:
		return true
	default:
		return false
	}
}

// Wait blocks until the current run's event stream is fully drained.
// Returns immediately when no run was started.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.runDone
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// apply folds one stream event into the aggregator. Callbacks fire
// only after the lock is released.
func (s *Session) apply(evt domain.Event) {
	var notice string
	var lines []string

	s.mu.Lock()
	switch evt.Type {
	case domain.EventCollected:
		if err := s.agg.OnCollected(evt.Total); err == nil {
			lines = append(lines, fmt.Sprintf("Collected %d tests.", evt.Total))
		}
	case domain.EventTestStarted:
		lines = append(lines, "> "+evt.NodeID)
	case domain.EventResult:
		if err := s.agg.OnEvent(evt.Outcome); err != nil {
			notice = fmt.Sprintf("Dropped out-of-sequence result for %s: %v", evt.Outcome.NodeID, err)
			break
		}
		lines = append(lines, fmt.Sprintf("%s [%s] (%.1f ms)",
			evt.Outcome.NodeID, evt.Outcome.Verdict,
			float64(evt.Outcome.Duration.Microseconds())/1000))
	case domain.EventCollectError:
		// surfaced like a failed test so it lands in the failure panes
		err := s.agg.OnEvent(domain.OutcomeEvent{
			NodeID:        evt.NodeID,
			Verdict:       domain.VerdictError,
			FailureDetail: evt.Detail,
		})
		if err == nil {
			lines = append(lines, "[!] Collection error in "+evt.NodeID)
		}
	case domain.EventOutput:
		lines = append(lines, evt.Line)
	case domain.EventFinished:
		wasStopped := s.agg.Run().Status == domain.RunStopped
		if err := s.agg.OnComplete(evt.ExitCode); err != nil {
			break
		}
		s.exit = evt.ExitCode
		if wasStopped {
			notice = "Run stopped by user."
		} else {
			notice = fmt.Sprintf("Run complete (exit status %d).", evt.ExitCode)
		}
		if s.recorder != nil {
			if err := s.recorder.Record(s.agg.Run(), s.spec); err != nil {
				lines = append(lines, "history: "+err.Error())
			}
		}
	}
	s.mu.Unlock()

	for _, line := range lines {
		s.output(line)
	}
	if notice != "" {
		s.notice(notice)
	}
	s.update()
}

// Apply executes one command. Signalled conditions (nothing selected,
// no failures, no active run) become notices, not errors.
func (s *Session) Apply(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case CmdRerunAll:
		return s.rerun(ctx, aggregate.RerunAll)
	case CmdRerunFailed:
		return s.rerun(ctx, aggregate.RerunFailed)
	case CmdRerunSelected:
		return s.rerun(ctx, aggregate.RerunSelected)
	case CmdStop:
		s.stop()
		return nil
	case CmdToggleSelection:
		s.mu.Lock()
		err := s.sel.Toggle(cmd.NodeID)
		s.mu.Unlock()
		if err != nil {
			s.notice(fmt.Sprintf("Cannot select %s: not a current failure.", cmd.NodeID))
			return nil
		}
		s.update()
		return nil
	case CmdQuit:
		s.stopIfActive()
		if s.cb.OnQuit != nil {
			s.cb.OnQuit()
		}
		return nil
	default:
		return fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}

func (s *Session) rerun(ctx context.Context, mode aggregate.RerunMode) error {
	s.mu.Lock()
	if s.agg.Active() {
		s.mu.Unlock()
		s.notice("A run is already active; stop it first.")
		return nil
	}
	spec, err := s.planner.Plan(mode)
	s.mu.Unlock()

	if err != nil {
		switch {
		case errors.Is(err, aggregate.ErrNoFailures):
			s.notice("No failed tests to rerun.")
		case errors.Is(err, aggregate.ErrNothingSelected):
			s.notice("No failures selected; select rows first.")
		case errors.Is(err, aggregate.ErrNoPriorRun):
			s.notice("No previous run to replan from.")
		default:
			return err
		}
		return nil
	}
	return s.StartRun(ctx, spec)
}

func (s *Session) stop() {
	s.mu.Lock()
	if !s.agg.Active() {
		s.mu.Unlock()
		s.notice("No active run to stop.")
		return
	}
	_ = s.agg.OnStop()
	s.mu.Unlock()

	s.source.Stop()
	s.notice("Stop requested; waiting for the run to wind down.")
	s.update()
}

func (s *Session) stopIfActive() {
	s.mu.Lock()
	active := s.agg.Active()
	if active {
		_ = s.agg.OnStop()
	}
	s.mu.Unlock()
	if active {
		s.source.Stop()
	}
}

// Snapshot returns a consistent copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	selected := make(map[string]bool)
	for _, id := range s.sel.NodeIDs() {
		selected[id] = true
	}
	return Snapshot{
		Run:      s.agg.Run(),
		Groups:   s.agg.Groups(),
		Selected: selected,
		Revision: s.agg.Revision(),
	}
}

// FailureDetail returns the verbatim failure text for nodeid.
func (s *Session) FailureDetail(nodeid string) (domain.OutcomeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Failure(nodeid)
}

// ExitCode mirrors the delegated engine's exit code for the most
// recent run.
func (s *Session) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exit
}

func (s *Session) notice(msg string) {
	if s.cb.OnNotice != nil {
		s.cb.OnNotice(msg)
	}
}

func (s *Session) output(line string) {
	if s.cb.OnOutput != nil {
		s.cb.OnOutput(line)
	}
}

func (s *Session) update() {
	if s.cb.OnUpdate != nil {
		s.cb.OnUpdate()
	}
}
