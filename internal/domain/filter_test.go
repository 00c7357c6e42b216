package domain

import (
	"testing"
)

func TestFilterSpec_BuildArgs(t *testing.T) {
	tests := []struct {
		name     string
		spec     FilterSpec
		nodeids  []string
		expected []string
	}{
		{
			name:     "default paths only",
			spec:     FilterSpec{Paths: []string{"tests"}},
			expected: []string{"tests", "-q", "--color=no", "-s"},
		},
		{
			name: "keyword and markers",
			spec: FilterSpec{Paths: []string{"pkg"}, Keyword: "slow", Markers: "smoke"},
			expected: []string{
				"pkg", "-k", "slow", "-m", "smoke", "-q", "--color=no", "-s",
			},
		},
		{
			name:    "nodeids replace paths",
			spec:    FilterSpec{Paths: []string{"pkg"}, Keyword: "slow", Extra: []string{"--maxfail=1"}},
			nodeids: []string{"node::id"},
			expected: []string{
				"node::id", "-k", "slow", "--maxfail=1", "-q", "--color=no", "-s",
			},
		},
		{
			name: "multiple paths preserved in order",
			spec: FilterSpec{Paths: []string{"a", "b"}},
			expected: []string{
				"a", "b", "-q", "--color=no", "-s",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.spec.BuildArgs(tt.nodeids)
			if len(args) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, args)
			}
			for i := range args {
				if args[i] != tt.expected[i] {
					t.Errorf("arg %d: expected %q, got %q", i, tt.expected[i], args[i])
				}
			}
		})
	}
}

func TestFilterSpec_WithPaths(t *testing.T) {
	spec := FilterSpec{Paths: []string{"tests"}, Keyword: "slow", Markers: "smoke", Extra: []string{"--lf"}}
	out := spec.WithPaths([]string{"a::b", "c::d"})

	if out.Keyword != "slow" || out.Markers != "smoke" || len(out.Extra) != 1 {
		t.Errorf("filters not preserved: %+v", out)
	}
	if len(out.Paths) != 2 || out.Paths[0] != "a::b" {
		t.Errorf("paths not replaced: %v", out.Paths)
	}
	if len(spec.Paths) != 1 || spec.Paths[0] != "tests" {
		t.Errorf("original spec mutated: %v", spec.Paths)
	}
}

func TestGroupKey(t *testing.T) {
	tests := []struct {
		nodeid   string
		expected string
	}{
		{"pkg/test_a.py::feature::case1", "pkg/test_a.py :: feature"},
		{"pkg/test_b.py::case3", "pkg/test_b.py :: case3"},
		{"pkg/test_c.py", "pkg/test_c.py"},
	}

	for _, tt := range tests {
		if got := GroupKey(tt.nodeid); got != tt.expected {
			t.Errorf("GroupKey(%q): expected %q, got %q", tt.nodeid, tt.expected, got)
		}
	}
}

func TestMemberLabel(t *testing.T) {
	if got := MemberLabel("pkg/test_a.py::feature::case1"); got != "feature::case1" {
		t.Errorf("expected feature::case1, got %q", got)
	}
	if got := MemberLabel("pkg/test_c.py"); got != "pkg/test_c.py" {
		t.Errorf("expected file fallback, got %q", got)
	}
}
