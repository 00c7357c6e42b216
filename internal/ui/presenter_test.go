package ui

import (
	"strings"
	"testing"
	"time"

	"testr/internal/aggregate"
	"testr/internal/domain"
	"testr/internal/session"
)

func fixedPresenter() *Presenter {
	p := NewPresenter()
	now := time.Date(2025, 3, 1, 12, 1, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	return p
}

func sampleSnapshot() session.Snapshot {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return session.Snapshot{
		Run: domain.Run{
			Status:         domain.RunRunning,
			StartedAt:      started,
			TotalCollected: 10,
			Counts: domain.Counts{
				domain.VerdictPassed:  3,
				domain.VerdictFailed:  1,
				domain.VerdictError:   1,
				domain.VerdictSkipped: 1,
			},
		},
		Groups: []aggregate.Group{
			{Key: "pkg/test_a.py :: Feature", NodeIDs: []string{"pkg/test_a.py::Feature::case1", "pkg/test_a.py::Feature::case2"}},
			{Key: "pkg/test_b.py :: case3", NodeIDs: []string{"pkg/test_b.py::case3"}},
		},
		Selected: map[string]bool{"pkg/test_a.py::Feature::case2": true},
		Revision: 7,
	}
}

func TestPresenter_Summary(t *testing.T) {
	p := fixedPresenter()
	summary := p.Summary(sampleSnapshot())

	for _, want := range []string{"Passed[white]: 3", "Failed[white]: 2", "Skipped[white]: 1", "Progress[white]: 6/10", "Elapsed[white]: 1m00s"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q: %s", want, summary)
		}
	}
}

func TestPresenter_SummaryIdempotent(t *testing.T) {
	p := fixedPresenter()
	snap := sampleSnapshot()

	if first, second := p.Summary(snap), p.Summary(snap); first != second {
		t.Errorf("summary not idempotent:\n%s\n%s", first, second)
	}
	rowsA := p.FailureRows(snap)
	rowsB := p.FailureRows(snap)
	if len(rowsA) != len(rowsB) {
		t.Fatal("rows not idempotent")
	}
	for i := range rowsA {
		if rowsA[i].Key != rowsB[i].Key || rowsA[i].Members != rowsB[i].Members {
			t.Errorf("row %d differs between projections", i)
		}
	}
}

func TestPresenter_FailureRows(t *testing.T) {
	p := fixedPresenter()
	rows := p.FailureRows(sampleSnapshot())

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Key != "pkg/test_a.py :: Feature" || rows[0].Count != 2 {
		t.Errorf("row 0: %+v", rows[0])
	}
	if rows[0].Members != "Feature::case1, Feature::case2" {
		t.Errorf("row 0 members: %q", rows[0].Members)
	}
	if !rows[0].Selected {
		t.Error("row 0 should be marked selected")
	}
	if rows[1].Selected {
		t.Error("row 1 should not be marked selected")
	}
}

func TestPresenter_Detail(t *testing.T) {
	p := fixedPresenter()
	snap := sampleSnapshot()
	lookup := func(nodeid string) (domain.OutcomeEvent, bool) {
		if nodeid == "pkg/test_a.py::Feature::case1" {
			return domain.OutcomeEvent{NodeID: nodeid, Verdict: domain.VerdictFailed, FailureDetail: "assert 1 == 2\nE  where ..."}, true
		}
		return domain.OutcomeEvent{}, false
	}

	detail := p.Detail(snap, []string{"pkg/test_a.py::Feature::case1", "pkg/test_a.py::Feature::case2"}, lookup)
	if !strings.Contains(detail, "assert 1 == 2") {
		t.Errorf("verbatim detail missing: %s", detail)
	}
	if !strings.Contains(detail, "No traceback recorded.") {
		t.Errorf("missing-detail fallback absent: %s", detail)
	}
	if !strings.Contains(detail, "* pkg/test_a.py::Feature::case2") {
		t.Errorf("selected marker absent: %s", detail)
	}

	if empty := p.Detail(snap, nil, lookup); !strings.Contains(empty, "No details") {
		t.Errorf("empty-row fallback: %q", empty)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{3 * time.Second, "3s"},
		{65 * time.Second, "1m05s"},
		{3723 * time.Second, "1h02m03s"},
		{-5 * time.Second, "0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.expected {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.d, got, tt.expected)
		}
	}
}
