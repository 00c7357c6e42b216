package aggregate

import (
	"errors"

	"testr/internal/domain"
)

// RerunMode selects which subset of tests a new run should cover.
type RerunMode string

const (
	RerunAll      RerunMode = "all"
	RerunFailed   RerunMode = "failed_only"
	RerunSelected RerunMode = "selected"
)

// Signalled planning conditions; callers surface both as notices and
// must not launch a run.
var (
	ErrNoFailures      = errors.New("no failed tests to rerun")
	ErrNothingSelected = errors.New("no failures selected")
	ErrNoPriorRun      = errors.New("no run to replan from")
)

// Planner computes the filter spec for the next run from the
// aggregator's failure set and the current selection.
type Planner struct {
	agg *Aggregator
	sel *Selection
}

// NewPlanner wires a planner to its aggregator and selection.
func NewPlanner(agg *Aggregator, sel *Selection) *Planner {
	return &Planner{agg: agg, sel: sel}
}

// Plan returns the filter spec for the given mode. RerunAll reuses the
// last spec unchanged. RerunFailed replaces paths with the distinct
// failed/errored nodeids in arrival order; an empty failure set is
// reported as ErrNoFailures rather than silently planning a full run.
// RerunSelected uses exactly the selection, ErrNothingSelected when
// empty. Keyword, markers and extra args are preserved throughout.
func (p *Planner) Plan(mode RerunMode) (domain.FilterSpec, error) {
	spec, ok := p.agg.LastSpec()
	if !ok {
		return domain.FilterSpec{}, ErrNoPriorRun
	}

	switch mode {
	case RerunAll:
		return spec, nil
	case RerunFailed:
		run := p.agg.Run()
		failed := run.FailedNodeIDs()
		if len(failed) == 0 {
			return domain.FilterSpec{}, ErrNoFailures
		}
		return spec.WithPaths(failed), nil
	case RerunSelected:
		if p.sel.Empty() {
			return domain.FilterSpec{}, ErrNothingSelected
		}
		return spec.WithPaths(p.sel.NodeIDs()), nil
	default:
		return domain.FilterSpec{}, errors.New("unknown rerun mode: " + string(mode))
	}
}
