package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/defaults"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/lifecycle"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/probe"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/window"
)

// RunAll starts the backend and opens the UI in the system browser.
func RunAll() {
	os.Exit(runHeadless())
}

func runHeadless() int {
	// Ensure data directory exists
	dataDir, err := defaults.EnsureDataDir()
	if err != nil {
		fmt.Printf("\033[31mError: Failed to initialize data directory: %v\033[0m\n", err)
		return 1
	}

	// Enforce single instance with lock file
	lockFile, err := acquireLock(dataDir)
	if err != nil {
		fmt.Printf("\033[31mError: %v\033[0m\n", err)
		fmt.Println("\033[33mPromptMetal is already running. Only one instance allowed per computer.\033[0m")
		return 1
	}
	defer releaseLock(lockFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lifecycle.OnBackendReady(func(appURL string) {
		printStartupBanner(appURL, dataDir)
		if err := window.OpenExternal(appURL); err != nil {
			logging.Warn("could not open browser", "url", appURL, "error", err)
		}
	})
	lifecycle.OnShutdown(func() {
		fmt.Println("\n\033[33mShutting down...\033[0m")
	})

	c := ServerConfig
	h := newBackendHost(c)
	defer h.stop()

	if err := h.start(ctx); err != nil {
		if ctx.Err() != nil {
			return 0
		}
		reportStartupFailure(err)
		return 1
	}

	select {
	case <-ctx.Done():
		return 0
	case <-h.sup.Done():
		logging.Error("backend exited unexpectedly", "exit_code", h.sup.ExitCode())
		return 1
	}
}

func reportStartupFailure(err error) {
	var te *probe.TimeoutError
	if errors.As(err, &te) {
		logging.Error("backend did not start", "port", te.Port, "timeout", te.Timeout, "attempts", te.Attempts)
	}
	fmt.Fprintf(os.Stderr, "\033[31mError: %v\033[0m\n", err)
}

// printStartupBanner prints a clean, clickable startup message
func printStartupBanner(appURL, dataDir string) {
	fmt.Println()
	fmt.Println("  \033[1;32mPromptMetal is running\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1;36m→\033[0m Web UI: \033[4;34m%s\033[0m\n", appURL)
	fmt.Printf("  \033[2mData: %s\033[0m\n", dataDir)
	fmt.Println()
	fmt.Println("  \033[2mPress Ctrl+C to stop\033[0m")
	fmt.Println()
}
