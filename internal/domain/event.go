package domain

import "time"

// Verdict is the outcome classification of one executed test.
type Verdict string

const (
	VerdictPassed  Verdict = "passed"
	VerdictFailed  Verdict = "failed"
	VerdictSkipped Verdict = "skipped"
	VerdictError   Verdict = "error"
)

// IsFailure reports whether the verdict counts as a failure for
// grouping and rerun purposes.
func (v Verdict) IsFailure() bool {
	return v == VerdictFailed || v == VerdictError
}

// OutcomeEvent is the immutable record of one test's result.
// NodeID is unique within a single run (file path + test name,
// "::"-separated, as pytest reports it).
type OutcomeEvent struct {
	NodeID        string
	Verdict       Verdict
	Duration      time.Duration
	FailureDetail string // verbatim longrepr, set iff failed/error
}

// EventType identifies one kind of event on the runner stream.
type EventType string

const (
	EventCollected    EventType = "collected"
	EventCollectError EventType = "collect_error"
	EventTestStarted  EventType = "start"
	EventResult       EventType = "result"
	EventOutput       EventType = "output"
	EventFinished     EventType = "finished"
)

// Event is one item on the stream produced by an execution engine.
// Only the fields relevant to its Type are populated.
type Event struct {
	Type     EventType
	Total    int          // EventCollected
	NodeID   string       // EventTestStarted, EventCollectError
	Outcome  OutcomeEvent // EventResult
	Line     string       // EventOutput: one raw output line
	Detail   string       // EventCollectError: verbatim longrepr
	ExitCode int          // EventFinished
}
