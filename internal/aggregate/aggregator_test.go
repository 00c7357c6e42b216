package aggregate

import (
	"errors"
	"testing"
	"time"

	"testr/internal/domain"
)

func result(nodeid string, verdict domain.Verdict) domain.OutcomeEvent {
	evt := domain.OutcomeEvent{
		NodeID:   nodeid,
		Verdict:  verdict,
		Duration: 10 * time.Millisecond,
	}
	if verdict.IsFailure() {
		evt.FailureDetail = "boom: " + nodeid
	}
	return evt
}

func startedAggregator(t *testing.T) *Aggregator {
	t.Helper()
	agg := NewAggregator()
	if err := agg.Start(domain.FilterSpec{Paths: []string{"tests"}}); err != nil {
		t.Fatalf("start: %v", err)
	}
	return agg
}

func TestAggregator_RunningTotals(t *testing.T) {
	agg := startedAggregator(t)

	sequence := []struct {
		nodeid  string
		verdict domain.Verdict
	}{
		{"t.py::a", domain.VerdictPassed},
		{"t.py::b", domain.VerdictFailed},
		{"t.py::c", domain.VerdictSkipped},
		{"t.py::d", domain.VerdictError},
		{"t.py::e", domain.VerdictPassed},
	}

	want := domain.Counts{}
	for _, step := range sequence {
		if err := agg.OnEvent(result(step.nodeid, step.verdict)); err != nil {
			t.Fatalf("event %s: %v", step.nodeid, err)
		}
		want[step.verdict]++

		// counts must equal a fold over events at every point
		counts := agg.Run().Counts
		for _, v := range []domain.Verdict{domain.VerdictPassed, domain.VerdictFailed, domain.VerdictSkipped, domain.VerdictError} {
			if counts[v] != want[v] {
				t.Errorf("after %s: counts[%s] = %d, want %d", step.nodeid, v, counts[v], want[v])
			}
		}
	}

	if got := agg.Run().Counts.Total(); got != len(sequence) {
		t.Errorf("total = %d, want %d", got, len(sequence))
	}
	if got := agg.Run().Counts.Failures(); got != 2 {
		t.Errorf("failures = %d, want 2", got)
	}
}

func TestAggregator_LifecycleErrors(t *testing.T) {
	agg := NewAggregator()

	t.Run("event before start", func(t *testing.T) {
		err := agg.OnEvent(result("t.py::a", domain.VerdictPassed))
		if !errors.Is(err, ErrInvalidSequence) {
			t.Errorf("expected ErrInvalidSequence, got %v", err)
		}
		if len(agg.Run().Events) != 0 {
			t.Error("rejected event must not be appended")
		}
	})

	t.Run("event after complete", func(t *testing.T) {
		if err := agg.Start(domain.FilterSpec{}); err != nil {
			t.Fatal(err)
		}
		if err := agg.OnComplete(0); err != nil {
			t.Fatal(err)
		}
		err := agg.OnEvent(result("t.py::a", domain.VerdictPassed))
		if !errors.Is(err, ErrInvalidSequence) {
			t.Errorf("expected ErrInvalidSequence, got %v", err)
		}
	})

	t.Run("start while running rejected", func(t *testing.T) {
		fresh := startedAggregator(t)
		if err := fresh.Start(domain.FilterSpec{}); !errors.Is(err, ErrInvalidSequence) {
			t.Errorf("expected ErrInvalidSequence, got %v", err)
		}
	})

	t.Run("stop while idle rejected", func(t *testing.T) {
		if err := NewAggregator().OnStop(); !errors.Is(err, ErrInvalidSequence) {
			t.Errorf("expected ErrInvalidSequence, got %v", err)
		}
	})
}

func TestAggregator_StopThenLateEvent(t *testing.T) {
	agg := startedAggregator(t)
	if err := agg.OnEvent(result("t.py::a", domain.VerdictPassed)); err != nil {
		t.Fatal(err)
	}
	if err := agg.OnStop(); err != nil {
		t.Fatal(err)
	}

	// the subprocess may flush one more buffered result after stop
	if err := agg.OnEvent(result("t.py::b", domain.VerdictFailed)); err != nil {
		t.Fatalf("late event after stop must append: %v", err)
	}
	run := agg.Run()
	if run.Status != domain.RunStopped {
		t.Errorf("status = %s, want stopped", run.Status)
	}
	if len(run.Events) != 2 {
		t.Errorf("events = %d, want 2", len(run.Events))
	}
	if run.Counts[domain.VerdictFailed] != 1 {
		t.Errorf("failed count = %d, want 1", run.Counts[domain.VerdictFailed])
	}

	// the terminal finish seals the run without resurrecting it
	if err := agg.OnComplete(2); err != nil {
		t.Fatal(err)
	}
	if agg.Run().Status != domain.RunStopped {
		t.Errorf("status after complete = %s, want stopped", agg.Run().Status)
	}
	if err := agg.OnEvent(result("t.py::c", domain.VerdictPassed)); !errors.Is(err, ErrInvalidSequence) {
		t.Errorf("event after finish: expected ErrInvalidSequence, got %v", err)
	}
}

func TestAggregator_GroupsPartitionFailures(t *testing.T) {
	agg := startedAggregator(t)

	events := []domain.OutcomeEvent{
		result("pkg/test_a.py::Feature::case1", domain.VerdictFailed),
		result("pkg/test_b.py::case3", domain.VerdictPassed),
		result("pkg/test_a.py::Feature::case2", domain.VerdictError),
		result("pkg/test_b.py::case4", domain.VerdictFailed),
		result("pkg/test_a.py::Other::case5", domain.VerdictFailed),
	}
	for _, evt := range events {
		if err := agg.OnEvent(evt); err != nil {
			t.Fatal(err)
		}
	}
	if err := agg.OnComplete(1); err != nil {
		t.Fatal(err)
	}

	groups := agg.Groups()
	wantKeys := []string{
		"pkg/test_a.py :: Feature",
		"pkg/test_b.py :: case4",
		"pkg/test_a.py :: Other",
	}
	if len(groups) != len(wantKeys) {
		t.Fatalf("groups = %d, want %d", len(groups), len(wantKeys))
	}
	for i, key := range wantKeys {
		if groups[i].Key != key {
			t.Errorf("group %d key = %q, want %q", i, groups[i].Key, key)
		}
	}

	// every failed/errored event appears in exactly one group
	seen := make(map[string]int)
	for _, g := range groups {
		for _, id := range g.NodeIDs {
			seen[id]++
		}
	}
	for _, evt := range events {
		if evt.Verdict.IsFailure() {
			if seen[evt.NodeID] != 1 {
				t.Errorf("failure %s appears %d times in groups", evt.NodeID, seen[evt.NodeID])
			}
		} else if seen[evt.NodeID] != 0 {
			t.Errorf("non-failure %s present in groups", evt.NodeID)
		}
	}

	// members stay in arrival order within their group
	if groups[0].NodeIDs[0] != "pkg/test_a.py::Feature::case1" || groups[0].NodeIDs[1] != "pkg/test_a.py::Feature::case2" {
		t.Errorf("group member order: %v", groups[0].NodeIDs)
	}
}

func TestAggregator_DeterministicOrdering(t *testing.T) {
	build := func() []Group {
		agg := startedAggregator(t)
		for _, id := range []string{"b.py::x", "a.py::y", "b.py::z", "c.py::w"} {
			if err := agg.OnEvent(result(id, domain.VerdictFailed)); err != nil {
				t.Fatal(err)
			}
		}
		return agg.Groups()
	}

	first := build()
	second := build()
	if len(first) != len(second) {
		t.Fatalf("group counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Errorf("group %d: %q vs %q", i, first[i].Key, second[i].Key)
		}
	}
}

func TestAggregator_StartClearsPriorRun(t *testing.T) {
	agg := startedAggregator(t)
	if err := agg.OnEvent(result("t.py::a", domain.VerdictFailed)); err != nil {
		t.Fatal(err)
	}
	if err := agg.OnComplete(1); err != nil {
		t.Fatal(err)
	}

	if err := agg.Start(domain.FilterSpec{Paths: []string{"other"}}); err != nil {
		t.Fatal(err)
	}
	run := agg.Run()
	if len(run.Events) != 0 || run.Counts.Total() != 0 || len(agg.Groups()) != 0 {
		t.Errorf("prior run state leaked: %+v", run)
	}
	if agg.IsFailure("t.py::a") {
		t.Error("failure index not cleared on start")
	}
}

func TestAggregator_RevisionAdvancesOnMutation(t *testing.T) {
	agg := NewAggregator()
	before := agg.Revision()
	if err := agg.Start(domain.FilterSpec{}); err != nil {
		t.Fatal(err)
	}
	if agg.Revision() == before {
		t.Error("revision unchanged by start")
	}
	mid := agg.Revision()
	if err := agg.OnEvent(result("t.py::a", domain.VerdictPassed)); err != nil {
		t.Fatal(err)
	}
	if agg.Revision() == mid {
		t.Error("revision unchanged by event")
	}
}
