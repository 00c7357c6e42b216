package domain

// FilterSpec selects which tests a run executes. Keyword and Markers
// are opaque pytest expressions passed through verbatim; Extra is a
// list of raw pytest arguments.
type FilterSpec struct {
	Paths   []string `json:"paths"`
	Keyword string   `json:"keyword,omitempty"`
	Markers string   `json:"markers,omitempty"`
	Extra   []string `json:"extra,omitempty"`
}

// WithPaths returns a copy of the spec with Paths replaced, preserving
// keyword, markers and extra arguments.
func (f FilterSpec) WithPaths(paths []string) FilterSpec {
	out := f
	out.Paths = append([]string(nil), paths...)
	return out
}

// BuildArgs constructs the pytest CLI arguments for a run. When
// nodeids is non-empty it replaces Paths as the selection.
func (f FilterSpec) BuildArgs(nodeids []string) []string {
	var args []string
	if len(nodeids) > 0 {
		args = append(args, nodeids...)
	} else {
		args = append(args, f.Paths...)
	}
	if f.Keyword != "" {
		args = append(args, "-k", f.Keyword)
	}
	if f.Markers != "" {
		args = append(args, "-m", f.Markers)
	}
	args = append(args, f.Extra...)
	// quiet, uncolored output keeps the live log pane readable
	args = append(args, "-q", "--color=no", "-s")
	return args
}

// Equal reports field-for-field equality.
func (f FilterSpec) Equal(other FilterSpec) bool {
	if f.Keyword != other.Keyword || f.Markers != other.Markers {
		return false
	}
	return equalStrings(f.Paths, other.Paths) && equalStrings(f.Extra, other.Extra)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
