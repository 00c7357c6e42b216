package aggregate

import (
	"errors"
	"testing"

	"testr/internal/domain"
)

func TestSelection_ToggleAndClear(t *testing.T) {
	agg := startedAggregator(t)
	sel := NewSelection(agg)
	if err := agg.OnEvent(result("t.py::B", domain.VerdictFailed)); err != nil {
		t.Fatal(err)
	}
	if err := agg.OnEvent(result("t.py::C", domain.VerdictError)); err != nil {
		t.Fatal(err)
	}

	t.Run("toggle on", func(t *testing.T) {
		if err := sel.Toggle("t.py::B"); err != nil {
			t.Fatal(err)
		}
		if !sel.Contains("t.py::B") {
			t.Error("B not selected after toggle")
		}
	})

	t.Run("toggle off", func(t *testing.T) {
		if err := sel.Toggle("t.py::B"); err != nil {
			t.Fatal(err)
		}
		if sel.Contains("t.py::B") {
			t.Error("B still selected after second toggle")
		}
	})

	t.Run("unknown nodeid rejected", func(t *testing.T) {
		err := sel.Toggle("t.py::nope")
		if !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("expected ErrInvalidSelection, got %v", err)
		}
	})

	t.Run("passed test rejected", func(t *testing.T) {
		if err := agg.OnEvent(result("t.py::A", domain.VerdictPassed)); err != nil {
			t.Fatal(err)
		}
		if err := sel.Toggle("t.py::A"); !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("expected ErrInvalidSelection, got %v", err)
		}
	})

	t.Run("clear empties", func(t *testing.T) {
		if err := sel.Toggle("t.py::C"); err != nil {
			t.Fatal(err)
		}
		sel.Clear()
		if !sel.Empty() {
			t.Error("selection not empty after clear")
		}
	})
}

func TestSelection_OrderPreserved(t *testing.T) {
	agg := startedAggregator(t)
	sel := NewSelection(agg)
	for _, id := range []string{"t.py::C", "t.py::A", "t.py::B"} {
		if err := agg.OnEvent(result(id, domain.VerdictFailed)); err != nil {
			t.Fatal(err)
		}
		if err := sel.Toggle(id); err != nil {
			t.Fatal(err)
		}
	}

	got := sel.NodeIDs()
	want := []string{"t.py::C", "t.py::A", "t.py::B"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSelection_StaleAfterNewRun(t *testing.T) {
	agg := startedAggregator(t)
	sel := NewSelection(agg)
	if err := agg.OnEvent(result("t.py::C", domain.VerdictFailed)); err != nil {
		t.Fatal(err)
	}
	if err := sel.Toggle("t.py::C"); err != nil {
		t.Fatal(err)
	}
	if err := agg.OnComplete(1); err != nil {
		t.Fatal(err)
	}

	// new run wipes the failure set; the session clears the selection
	// alongside Start, and a stale toggle is rejected
	if err := agg.Start(domain.FilterSpec{Paths: []string{"tests"}}); err != nil {
		t.Fatal(err)
	}
	sel.Clear()
	if err := sel.Toggle("t.py::C"); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("stale toggle: expected ErrInvalidSelection, got %v", err)
	}
}
