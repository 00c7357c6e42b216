package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Interpreter used to launch pytest (python -m pytest)
	PythonBin string

	// Conventional test root when no paths are supplied
	TestRoot string

	// Grace period between SIGINT and SIGKILL on stop
	StopGrace time.Duration

	// Override for the per-user state directory (tests set this)
	StateDir string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Keyword    string
	Markers    string
	Extra      []string
	UseLast    bool
	SaveLast   bool
	ForgetLast bool
	HistoryN   int
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		PythonBin: DefaultPython,
		TestRoot:  DefaultTestRoot,
		StopGrace: DefaultStopGrace,
		Flags:     Flags{SaveLast: true},
	}
	if bin := os.Getenv("TESTR_PYTHON"); bin != "" {
		cfg.PythonBin = bin
	}
	return cfg
}

// LoadDotenv loads a .env file from the working directory into the
// process environment so it reaches the pytest child. A missing file
// is fine.
func (c *Config) LoadDotenv() {
	_ = godotenv.Load()
}

// stateDir resolves the per-user state directory, creating it on
// first use.
func (c *Config) stateDir() (string, error) {
	dir := c.StateDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve user config dir: %w", err)
		}
		dir = filepath.Join(base, StateDirName)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	return dir, nil
}

// LastRunPath returns the path of the saved filter-spec record.
func (c *Config) LastRunPath() (string, error) {
	dir, err := c.stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LastRunFile), nil
}

// HistoryPath returns the path of the run-history database.
func (c *Config) HistoryPath() (string, error) {
	dir, err := c.stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HistoryFile), nil
}
