package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	_ "embed"

	"testr/internal/config"
	"testr/internal/domain"
)

//go:embed testr_stream.py
var streamPlugin []byte

// pluginModule is the import name pytest loads with -p.
const pluginModule = "testr_stream"

// PytestRunner runs pytest as a subprocess with the embedded stream
// plugin and decodes its stdout into domain events.
type PytestRunner struct {
	config *config.Config

	mu       sync.Mutex
	cmd      *exec.Cmd
	waitDone chan struct{}
}

// NewPytestRunner creates a runner using the config's interpreter.
func NewPytestRunner(cfg *config.Config) *PytestRunner {
	return &PytestRunner{config: cfg}
}

// Start launches `python -m pytest` for the given spec. The returned
// channel delivers events in arrival order and is closed once the
// subprocess has exited and its output is drained.
func (r *PytestRunner) Start(ctx context.Context, spec domain.FilterSpec) (<-chan domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd != nil {
		return nil, errors.New("a pytest run is already active")
	}

	pluginDir, err := materializePlugin()
	if err != nil {
		return nil, err
	}

	args := append([]string{"-m", "pytest"}, spec.BuildArgs(nil)...)
	args = append(args, "-p", pluginModule)
	cmd := exec.CommandContext(ctx, r.config.PythonBin, args...)
	cmd.Env = append(os.Environ(),
		"PYTHONPATH="+pluginDir+string(os.PathListSeparator)+os.Getenv("PYTHONPATH"),
		"PYTHONUNBUFFERED=1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		os.RemoveAll(pluginDir)
		return nil, fmt.Errorf("pipe stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		os.RemoveAll(pluginDir)
		return nil, fmt.Errorf("pipe stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		os.RemoveAll(pluginDir)
		return nil, fmt.Errorf("launch %s: %w", r.config.PythonBin, err)
	}

	events := make(chan domain.Event, 256)
	waitDone := make(chan struct{})
	r.cmd = cmd
	r.waitDone = waitDone

	go r.pump(cmd, stdout, stderr, events, pluginDir, waitDone)

	return events, nil
}

// pump drains both pipes, waits for the subprocess, and guarantees a
// terminal finished event before closing the stream.
func (r *PytestRunner) pump(cmd *exec.Cmd, stdout, stderr io.Reader, events chan<- domain.Event, pluginDir string, waitDone chan struct{}) {
	var sawFinished bool
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			evt, err := DecodeLine(scanner.Text())
			if err != nil {
				// a garbled event line is still worth showing
				events <- domain.Event{Type: domain.EventOutput, Line: scanner.Text()}
				continue
			}
			if evt.Type == domain.EventFinished {
				sawFinished = true
			}
			events <- evt
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			events <- domain.Event{Type: domain.EventOutput, Line: scanner.Text()}
		}
	}()
	wg.Wait()

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
			events <- domain.Event{Type: domain.EventOutput, Line: "pytest: " + err.Error()}
		}
	}
	if !sawFinished {
		// the plugin never reported sessionfinish (crash or kill)
		events <- domain.Event{Type: domain.EventFinished, ExitCode: exitCode}
	}

	close(events)
	close(waitDone)
	os.RemoveAll(pluginDir)

	r.mu.Lock()
	r.cmd = nil
	r.waitDone = nil
	r.mu.Unlock()
}

// Stop interrupts the active run. SIGINT first so pytest can flush its
// reports; SIGKILL after the configured grace period.
func (r *PytestRunner) Stop() {
	r.mu.Lock()
	cmd := r.cmd
	waitDone := r.waitDone
	r.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		_ = cmd.Process.Kill()
		return
	}

	grace := r.config.StopGrace
	if grace <= 0 {
		grace = config.DefaultStopGrace
	}
	go func() {
		select {
		case <-waitDone:
		case <-time.After(grace):
			_ = cmd.Process.Kill()
		}
	}()
}

// materializePlugin writes the embedded plugin to a temp dir that is
// prepended to PYTHONPATH for the child process.
func materializePlugin() (string, error) {
	dir, err := os.MkdirTemp("", "testr-plugin-")
	if err != nil {
		return "", fmt.Errorf("create plugin dir: %w", err)
	}
	path := filepath.Join(dir, pluginModule+".py")
	if err := os.WriteFile(path, streamPlugin, 0644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("write stream plugin: %w", err)
	}
	return dir, nil
}
