// Package runner launches the delegated test-execution engine and
// turns its output into a stream of domain events.
package runner

import (
	"context"

	"testr/internal/domain"
)

// EventSource is the capability the session depends on: given a filter
// spec it produces a finite sequence of events terminated by a
// finished event, and exposes a cancel operation. Exactly one run may
// be active per source at a time.
type EventSource interface {
	// Start launches a run. The returned channel is closed after the
	// terminal finished event. A launch failure is returned directly.
	Start(ctx context.Context, spec domain.FilterSpec) (<-chan domain.Event, error)
	// Stop requests graceful termination of the active run. The stream
	// may still deliver buffered events before closing.
	Stop()
}
