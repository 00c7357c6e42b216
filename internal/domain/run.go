package domain

import (
	"strings"
	"time"
)

// RunStatus is the lifecycle state of a Run.
type RunStatus string

const (
	RunIdle      RunStatus = "idle"
	RunRunning   RunStatus = "running"
	RunStopped   RunStatus = "stopped"
	RunCompleted RunStatus = "completed"
)

// Terminal reports whether the run has reached a final state.
func (s RunStatus) Terminal() bool {
	return s == RunStopped || s == RunCompleted
}

// Counts maps verdicts to running totals. Always equal to a fold over
// the run's events.
type Counts map[Verdict]int

// Failures returns failed + errored.
func (c Counts) Failures() int {
	return c[VerdictFailed] + c[VerdictError]
}

// Total returns the number of counted events.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Run holds the state of one test run. It is mutated only by the
// aggregator while active and becomes effectively immutable once the
// status is terminal.
type Run struct {
	Status         RunStatus
	StartedAt      time.Time
	EndedAt        time.Time
	Events         []OutcomeEvent // arrival order
	Counts         Counts
	TotalCollected int // 0 until the engine reports collection
	ExitCode       int
}

// Elapsed returns the run's wall-clock duration so far, or the final
// duration once the run has ended.
func (r *Run) Elapsed(now time.Time) time.Duration {
	if r.StartedAt.IsZero() {
		return 0
	}
	if !r.EndedAt.IsZero() {
		return r.EndedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

// FailedNodeIDs returns the distinct failed/errored nodeids in arrival
// order.
func (r *Run) FailedNodeIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, e := range r.Events {
		if e.Verdict.IsFailure() && !seen[e.NodeID] {
			seen[e.NodeID] = true
			ids = append(ids, e.NodeID)
		}
	}
	return ids
}

// SplitNodeID splits a pytest nodeid into its "::" components. The
// first component is always the file path.
func SplitNodeID(nodeid string) []string {
	return strings.Split(nodeid, "::")
}

// GroupKey derives the failure-grouping key for a nodeid: the file
// path plus the segment immediately after it (test class, or the test
// name for plain functions). File-level grouping is the baseline when
// no finer segment exists.
func GroupKey(nodeid string) string {
	parts := SplitNodeID(nodeid)
	if len(parts) > 1 {
		return parts[0] + " :: " + parts[1]
	}
	return parts[0]
}

// MemberLabel returns the within-group display label for a nodeid:
// everything after the file segment, or the file itself for bare
// file-level failures (e.g. collection errors).
func MemberLabel(nodeid string) string {
	parts := SplitNodeID(nodeid)
	if len(parts) > 1 {
		return strings.Join(parts[1:], "::")
	}
	return parts[0]
}
