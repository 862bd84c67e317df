package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/config"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/lifecycle"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/probe"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/supervisor"
)

// backendHost launches the backend child process and waits for its port.
type backendHost struct {
	cfg    *config.Config
	sup    *supervisor.Supervisor
	prober *probe.Prober
}

func newBackendHost(c *config.Config) *backendHost {
	mode := supervisor.ModePackaged
	if devMode || !c.IsProduction() {
		mode = supervisor.ModeDevelopment
	}

	p := probe.New()
	p.Interval = c.Supervisor.ProbeInterval
	p.OnAttempt = func(attempt int, err error) {
		if attempt%20 == 0 {
			logging.Debug("backend not ready yet", "attempt", attempt, "error", err)
		}
	}

	return &backendHost{
		cfg: c,
		sup: supervisor.New(supervisor.Options{
			Mode:        mode,
			DevCommand:  c.Supervisor.DevCommand,
			ProjectRoot: c.Supervisor.ProjectRoot,
			Port:        c.Server.Port,
			AppURL:      c.BaseURL(),
			StopTimeout: c.Supervisor.StopTimeout,
		}),
		prober: p,
	}
}

// start spawns the backend and blocks until its port accepts connections.
// An early exit of the child aborts the wait.
func (h *backendHost) start(ctx context.Context) error {
	started := time.Now()
	if err := h.sup.Start(ctx); err != nil {
		return fmt.Errorf("start backend: %w", err)
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	exited := h.sup.Done()
	go func() {
		select {
		case <-exited:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	err := h.prober.WaitForReady(waitCtx, probeHost(h.cfg.Server.Host), h.cfg.Server.Port, h.cfg.Supervisor.StartupTimeout)
	if err != nil {
		if ctx.Err() == nil && !h.sup.Running() {
			return fmt.Errorf("backend exited with code %d before accepting connections", h.sup.ExitCode())
		}
		return err
	}

	logging.Info("backend ready", "url", h.cfg.BaseURL(), "pid", h.sup.PID(), "took", time.Since(started).Round(time.Millisecond))
	lifecycle.Emit(lifecycle.EventBackendReady, h.cfg.BaseURL())
	return nil
}

// stop terminates the backend. Safe to call on every exit path.
func (h *backendHost) stop() {
	if !h.sup.Running() {
		return
	}
	lifecycle.Emit(lifecycle.EventShutdownStarted, nil)
	if err := h.sup.Stop(); err != nil {
		logging.Warn("failed to stop backend", "error", err)
	}
}

// probeHost maps wildcard bind addresses to loopback.
func probeHost(host string) string {
	switch host {
	case "", "0.0.0.0", "::":
		return "127.0.0.1"
	}
	return host
}
