package aggregate

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection signals a toggle on a nodeid that is not a
// current failure. Non-fatal; callers surface it as a notice.
var ErrInvalidSelection = errors.New("nodeid is not a current failure")

// FailureIndex answers membership queries against the active run's
// failed/errored set. Implemented by the Aggregator.
type FailureIndex interface {
	IsFailure(nodeid string) bool
}

// Selection tracks which failures are selected for a targeted rerun.
// Membership is always a subset of the active run's failures.
type Selection struct {
	index    FailureIndex
	members  map[string]bool
	order    []string // insertion order, for deterministic plans
}

// NewSelection returns an empty selection validated against index.
func NewSelection(index FailureIndex) *Selection {
	return &Selection{index: index, members: make(map[string]bool)}
}

// Toggle flips membership for nodeid. Unknown nodeids are rejected.
func (s *Selection) Toggle(nodeid string) error {
	if !s.index.IsFailure(nodeid) {
		return fmt.Errorf("%w: %s", ErrInvalidSelection, nodeid)
	}
	if s.members[nodeid] {
		delete(s.members, nodeid)
		for i, id := range s.order {
			if id == nodeid {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return nil
	}
	s.members[nodeid] = true
	s.order = append(s.order, nodeid)
	return nil
}

// Clear empties the selection. Called whenever a new run starts.
func (s *Selection) Clear() {
	s.members = make(map[string]bool)
	s.order = nil
}

// Contains reports membership.
func (s *Selection) Contains(nodeid string) bool { return s.members[nodeid] }

// NodeIDs returns the selected nodeids in selection order.
func (s *Selection) NodeIDs() []string {
	return append([]string(nil), s.order...)
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool { return len(s.members) == 0 }
