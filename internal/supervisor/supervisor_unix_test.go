//go:build !windows

package supervisor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/lifecycle"
)

func ignoreTerm() {
	signal.Ignore(syscall.SIGTERM)
}

func TestStopForceKillsAfterTimeout(t *testing.T) {
	opts := helperOptions(t, "ignore-term")
	opts.StopTimeout = 300 * time.Millisecond

	s := New(opts)
	require.NoError(t, s.Start(context.Background()))
	// give the helper time to install its signal handler
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	require.NoError(t, s.Stop())
	assert.GreaterOrEqual(t, time.Since(start), opts.StopTimeout)
	assert.False(t, s.Running())
	waitDone(t, s)
	assert.Equal(t, -1, s.ExitCode())
}

func TestDevelopmentModeRunsShellInProjectRoot(t *testing.T) {
	dir := t.TempDir()
	s := New(Options{
		Mode:        ModeDevelopment,
		DevCommand:  `printf '%s:%s' "$APP_ENV" "$PORT" > mode.txt; exit 4`,
		ProjectRoot: dir,
		Port:        5055,
		Stdout:      io.Discard,
		Stderr:      io.Discard,
		Events:      lifecycle.NewManager(),
	})
	require.NoError(t, s.Start(context.Background()))
	waitDone(t, s)

	assert.Equal(t, 4, s.ExitCode())
	data, err := os.ReadFile(filepath.Join(dir, "mode.txt"))
	require.NoError(t, err)
	assert.Equal(t, "development:5055", string(data))
}

func TestStopKillsDevShellChildren(t *testing.T) {
	dir := t.TempDir()
	s := New(Options{
		Mode:        ModeDevelopment,
		DevCommand:  "sleep 60 & echo $! > child.pid; wait",
		ProjectRoot: dir,
		StopTimeout: 2 * time.Second,
		Stdout:      io.Discard,
		Stderr:      io.Discard,
		Events:      lifecycle.NewManager(),
	})
	require.NoError(t, s.Start(context.Background()))

	pidFile := filepath.Join(dir, "child.pid")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(pidFile)
		return err == nil && len(data) > 0
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, s.Stop())

	var childPID int
	data, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	_, err = fmt.Sscan(string(data), &childPID)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return processGone(childPID)
	}, 5*time.Second, 20*time.Millisecond, "dev shell child survived Stop")
}

// processGone treats zombies as gone; an orphan may wait for a reaper.
func processGone(pid int) bool {
	if syscall.Kill(pid, 0) != nil {
		return true
	}
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return false
	}
	fields := strings.Fields(string(stat))
	return len(fields) > 2 && fields[2] == "Z"
}
