// Package aggregate holds the in-memory bookkeeping for a test run:
// the event aggregator, the failure selection, and the rerun planner.
package aggregate

import (
	"errors"
	"fmt"
	"time"

	"testr/internal/domain"
)

// ErrInvalidSequence signals an aggregator call that violates the run
// lifecycle (e.g. an event before start or after completion). The
// event bridge should never let this happen; state is left untouched.
var ErrInvalidSequence = errors.New("event outside run lifecycle")

// Group is one failure group: failed/errored events sharing a derived
// key, in arrival order.
type Group struct {
	Key     string
	NodeIDs []string
}

// Aggregator folds a stream of outcome events into a Run and a grouped
// failure index. Not safe for concurrent use; the session serializes
// all calls.
type Aggregator struct {
	run      domain.Run
	lastSpec domain.FilterSpec
	hasSpec  bool
	finished bool

	failures   map[string]domain.OutcomeEvent // latest event per failed nodeid
	groupIndex map[string]int                 // group key -> position in groups
	groups     []Group

	revision uint64
	now      func() time.Time
}

// NewAggregator returns an idle aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		run: domain.Run{Status: domain.RunIdle, Counts: domain.Counts{}},
		now: time.Now,
	}
}

// Start transitions to a fresh running Run, clearing all prior events
// and groups. Rejected while a run is already active.
func (a *Aggregator) Start(spec domain.FilterSpec) error {
	if a.run.Status == domain.RunRunning {
		return fmt.Errorf("%w: start while a run is active", ErrInvalidSequence)
	}
	a.run = domain.Run{
		Status:    domain.RunRunning,
		StartedAt: a.now(),
		Counts:    domain.Counts{},
	}
	a.lastSpec = spec
	a.hasSpec = true
	a.finished = false
	a.failures = make(map[string]domain.OutcomeEvent)
	a.groupIndex = make(map[string]int)
	a.groups = nil
	a.revision++
	return nil
}

// OnCollected records the engine's collected-test total.
func (a *Aggregator) OnCollected(total int) error {
	if a.run.Status != domain.RunRunning {
		return fmt.Errorf("%w: collected while %s", ErrInvalidSequence, a.run.Status)
	}
	a.run.TotalCollected = total
	a.revision++
	return nil
}

// OnEvent appends one outcome event, updating counts and the failure
// group index. Events are accepted while running and, to absorb a
// stopping subprocess's buffered output, while stopped but not yet
// finished; a stopped run is never resurrected.
func (a *Aggregator) OnEvent(evt domain.OutcomeEvent) error {
	switch {
	case a.run.Status == domain.RunRunning:
	case a.run.Status == domain.RunStopped && !a.finished:
	default:
		return fmt.Errorf("%w: event while %s", ErrInvalidSequence, a.run.Status)
	}

	a.run.Events = append(a.run.Events, evt)
	a.run.Counts[evt.Verdict]++
	if evt.Verdict.IsFailure() {
		a.indexFailure(evt)
	}
	a.revision++
	return nil
}

func (a *Aggregator) indexFailure(evt domain.OutcomeEvent) {
	_, seen := a.failures[evt.NodeID]
	a.failures[evt.NodeID] = evt
	if seen {
		return
	}
	key := domain.GroupKey(evt.NodeID)
	idx, ok := a.groupIndex[key]
	if !ok {
		idx = len(a.groups)
		a.groupIndex[key] = idx
		a.groups = append(a.groups, Group{Key: key})
	}
	a.groups[idx].NodeIDs = append(a.groups[idx].NodeIDs, evt.NodeID)
}

// OnComplete transitions the run to completed (or leaves a stopped run
// stopped) and records the engine's exit code and the end time.
func (a *Aggregator) OnComplete(exitCode int) error {
	switch a.run.Status {
	case domain.RunRunning:
		a.run.Status = domain.RunCompleted
	case domain.RunStopped:
		// stop already won; just seal the run
	default:
		return fmt.Errorf("%w: complete while %s", ErrInvalidSequence, a.run.Status)
	}
	a.run.ExitCode = exitCode
	if a.run.EndedAt.IsZero() {
		a.run.EndedAt = a.now()
	}
	a.finished = true
	a.revision++
	return nil
}

// OnStop marks the run stopped. Buffered events may still arrive until
// the terminal complete lands.
func (a *Aggregator) OnStop() error {
	if a.run.Status != domain.RunRunning {
		return fmt.Errorf("%w: stop while %s", ErrInvalidSequence, a.run.Status)
	}
	a.run.Status = domain.RunStopped
	a.run.EndedAt = a.now()
	a.revision++
	return nil
}

// Run returns a snapshot view of the current run.
func (a *Aggregator) Run() domain.Run { return a.run }

// Active reports whether a run is in progress.
func (a *Aggregator) Active() bool { return a.run.Status == domain.RunRunning }

// LastSpec returns the filter spec of the most recent run and whether
// one exists.
func (a *Aggregator) LastSpec() (domain.FilterSpec, bool) { return a.lastSpec, a.hasSpec }

// Groups returns the failure groups: ordered by first-failure arrival,
// members in arrival order within each group. Deterministic for
// identical input event sequences.
func (a *Aggregator) Groups() []Group { return a.groups }

// IsFailure reports whether nodeid is a known failed/errored test of
// the current run.
func (a *Aggregator) IsFailure(nodeid string) bool {
	_, ok := a.failures[nodeid]
	return ok
}

// Failure returns the recorded failure event for nodeid.
func (a *Aggregator) Failure(nodeid string) (domain.OutcomeEvent, bool) {
	evt, ok := a.failures[nodeid]
	return evt, ok
}

// Revision increments on every mutation; projections key their
// freshness off it.
func (a *Aggregator) Revision() uint64 { return a.revision }
