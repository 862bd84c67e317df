// Package supervisor owns the backend child process started by the desktop
// host.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/lifecycle"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
)

// Mode selects how the backend is launched.
type Mode int

const (
	// ModePackaged re-executes the host binary with the serve subcommand.
	ModePackaged Mode = iota
	// ModeDevelopment runs the dev command through the platform shell.
	ModeDevelopment
)

func (m Mode) String() string {
	if m == ModeDevelopment {
		return "development"
	}
	return "production"
}

const (
	DefaultStopTimeout = 5 * time.Second
	DefaultDevCommand  = "go run . serve"

	// grace period after a force kill before Stop gives up
	killWait = 2 * time.Second
)

// ErrAlreadyRunning is returned by Start when a backend process is tracked.
var ErrAlreadyRunning = errors.New("backend process already running")

// Options configures a Supervisor.
type Options struct {
	Mode Mode

	// Packaged mode. Executable defaults to os.Executable(), Args to ["serve"].
	Executable string
	Args       []string

	// Development mode.
	DevCommand  string
	ProjectRoot string

	// Env is the base environment; nil means os.Environ().
	Env    []string
	Port   int
	AppURL string

	StopTimeout time.Duration
	Stdout      io.Writer
	Stderr      io.Writer

	// Events receives backend_started/backend_exited; nil uses the global manager.
	Events *lifecycle.Manager
}

type process struct {
	cmd      *exec.Cmd
	done     chan struct{}
	stopping atomic.Bool
	exitCode int
}

// Supervisor tracks at most one backend process.
type Supervisor struct {
	opts Options

	mu   sync.Mutex
	proc *process
	last *process
}

// New creates a Supervisor. Nothing is started until Start.
func New(opts Options) *Supervisor {
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	if opts.DevCommand == "" {
		opts.DevCommand = DefaultDevCommand
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Supervisor{opts: opts}
}

// Start launches the backend and returns once the process has been spawned.
// It does not wait for the backend to accept connections.
func (s *Supervisor) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.proc != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}

	cmd, err := s.command()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("start backend: %w", err)
	}

	p := &process{cmd: cmd, done: make(chan struct{}), exitCode: -1}
	s.proc = p
	s.last = p
	s.mu.Unlock()

	pid := cmd.Process.Pid
	logging.Info("backend started", "pid", pid, "mode", s.opts.Mode.String(), "port", s.opts.Port)
	s.emit(lifecycle.EventBackendStarted, pid)

	go s.watch(p)
	return nil
}

func (s *Supervisor) watch(p *process) {
	err := p.cmd.Wait()
	code := exitCode(p.cmd, err)
	pid := p.cmd.Process.Pid
	expected := p.stopping.Load()

	s.mu.Lock()
	p.exitCode = code
	if s.proc == p {
		s.proc = nil
	}
	s.mu.Unlock()

	switch {
	case expected:
		logging.Debug("backend stopped", "pid", pid, "code", code)
	case code != 0:
		logging.Warn("backend exited unexpectedly", "pid", pid, "code", code, "error", err)
	default:
		logging.Info("backend exited", "pid", pid)
	}

	s.emit(lifecycle.EventBackendExited, lifecycle.BackendExit{PID: pid, ExitCode: code, Expected: expected})
	close(p.done)
}

// Stop terminates the tracked process: signal, bounded wait, force kill.
// It is a no-op returning nil when nothing is tracked, so it is safe to call
// from every exit path.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	p := s.proc
	s.mu.Unlock()
	if p == nil {
		return nil
	}

	p.stopping.Store(true)
	pid := p.cmd.Process.Pid
	if err := terminate(p.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logging.Debug("terminate backend", "pid", pid, "error", err)
	}

	select {
	case <-p.done:
	case <-time.After(s.opts.StopTimeout):
		logging.Warn("backend did not exit in time, killing", "pid", pid, "timeout", s.opts.StopTimeout)
		if err := kill(p.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
			logging.Debug("kill backend", "pid", pid, "error", err)
		}
		select {
		case <-p.done:
		case <-time.After(killWait):
			return fmt.Errorf("backend pid %d did not exit after kill", pid)
		}
	}

	s.mu.Lock()
	if s.proc == p {
		s.proc = nil
	}
	s.mu.Unlock()
	return nil
}

// Running reports whether a backend process is tracked.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc != nil
}

// PID returns the tracked process id, or 0.
func (s *Supervisor) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return 0
	}
	return s.proc.cmd.Process.Pid
}

// Done is closed when the most recently started process exits. Before the
// first Start it returns a closed channel.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.last.done
}

// ExitCode returns the exit code of the most recent process, or -1 while it
// runs, when it was killed by a signal, or when nothing was started.
func (s *Supervisor) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return -1
	}
	return s.last.exitCode
}

func (s *Supervisor) command() (*exec.Cmd, error) {
	var cmd *exec.Cmd
	switch s.opts.Mode {
	case ModeDevelopment:
		cmd = shellCommand(s.opts.DevCommand)
		cmd.Dir = s.opts.ProjectRoot
	default:
		exe := s.opts.Executable
		if exe == "" {
			var err error
			if exe, err = os.Executable(); err != nil {
				return nil, fmt.Errorf("resolve executable: %w", err)
			}
		}
		args := s.opts.Args
		if len(args) == 0 {
			args = []string{"serve"}
		}
		cmd = exec.Command(exe, args...)
	}

	cmd.Env = s.environ()
	cmd.Stdin = os.Stdin
	cmd.Stdout = s.opts.Stdout
	cmd.Stderr = s.opts.Stderr
	setProcessGroup(cmd)
	return cmd, nil
}

// environ returns the inherited environment with PORT, APP_URL and the mode
// variables replaced.
func (s *Supervisor) environ() []string {
	base := s.opts.Env
	if base == nil {
		base = os.Environ()
	}

	set := map[string]string{
		"APP_ENV":  s.opts.Mode.String(),
		"NODE_ENV": s.opts.Mode.String(),
	}
	if s.opts.Port > 0 {
		set["PORT"] = strconv.Itoa(s.opts.Port)
	}
	if s.opts.AppURL != "" {
		set["APP_URL"] = s.opts.AppURL
	}

	env := make([]string, 0, len(base)+len(set))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := set[key]; ok {
			continue
		}
		env = append(env, kv)
	}
	for _, key := range []string{"APP_ENV", "NODE_ENV", "PORT", "APP_URL"} {
		if v, ok := set[key]; ok {
			env = append(env, key+"="+v)
		}
	}
	return env
}

func (s *Supervisor) emit(event lifecycle.Event, data any) {
	if s.opts.Events != nil {
		s.opts.Events.Emit(event, data)
		return
	}
	lifecycle.Emit(event, data)
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
