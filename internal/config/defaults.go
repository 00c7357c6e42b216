package config

import "time"

const (
	// DefaultTestRoot is the conventional test root passed to pytest
	// when no paths are given.
	DefaultTestRoot = "tests"
	// DefaultPython is the interpreter used to launch pytest.
	DefaultPython = "python3"
	// DefaultStopGrace is how long a stop request waits for pytest to
	// exit after SIGINT before the process is killed.
	DefaultStopGrace = 5 * time.Second
	// StateDirName is the per-user directory (under the OS config dir)
	// holding the saved filter record and the run history.
	StateDirName = "testr"
	// LastRunFile is the flat record of the last-used filter spec.
	LastRunFile = "last_run.json"
	// HistoryFile is the SQLite run-history database.
	HistoryFile = "history.db"
)
