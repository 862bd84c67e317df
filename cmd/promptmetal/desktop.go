//go:build desktop

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	goruntime "runtime"
	"sync/atomic"
	"syscall"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/defaults"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/lifecycle"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/window"
)

// windowState persists the main window size between restarts.
type windowState struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func windowStatePath(dataDir string) string {
	return filepath.Join(dataDir, "window-state.json")
}

// loadWindowState reads saved window state from disk.
// Returns nil if the file doesn't exist or can't be read.
func loadWindowState(dataDir string) *windowState {
	data, err := os.ReadFile(windowStatePath(dataDir))
	if err != nil {
		return nil
	}
	var state windowState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil
	}
	if state.Width < 800 || state.Height < 600 {
		return nil
	}
	return &state
}

func saveWindowState(dataDir string, w *application.WebviewWindow) {
	width, height := w.Size()
	// minimized or not yet visible
	if width < 800 || height < 600 {
		return
	}
	data, err := json.Marshal(windowState{Width: width, Height: height})
	if err != nil {
		return
	}
	_ = os.WriteFile(windowStatePath(dataDir), data, 0644)
}

// RunDesktop starts the backend and shows the UI in a native window.
func RunDesktop() {
	os.Exit(runDesktop())
}

func runDesktop() int {
	dataDir, err := defaults.EnsureDataDir()
	if err != nil {
		fmt.Printf("\033[31mError: Failed to initialize data directory: %v\033[0m\n", err)
		return 1
	}

	lockFile, err := acquireLock(dataDir)
	if err != nil {
		fmt.Printf("\033[31mError: %v\033[0m\n", err)
		fmt.Println("\033[33mPromptMetal is already running. Only one instance allowed per computer.\033[0m")
		return 1
	}
	defer releaseLock(lockFile)

	c := ServerConfig
	h := newBackendHost(c)
	// Every exit path below funnels through here.
	defer h.stop()

	var exitCode atomic.Int32
	var quitting atomic.Bool
	var presenter *window.Presenter

	wailsApp := application.New(application.Options{
		Name: c.App.Name,
		Mac: application.MacOptions{
			// macOS apps stay alive without windows; reopen creates a new one.
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
		Linux: application.LinuxOptions{
			ProgramName: "promptmetal",
		},
		// The page has no bound services. Its only channel to the host is the
		// bootstrap script's open request.
		RawMessageHandler: func(_ application.Window, message string, _ *application.OriginInfo) {
			if presenter != nil {
				presenter.HandleMessage(message)
			}
		},
		OnShutdown: func() {
			quitting.Store(true)
			h.stop()
		},
	})

	saved := loadWindowState(dataDir)
	presenter = window.NewPresenter(c.BaseURL(), c.App.Name, func(opts window.Options) window.Surface {
		if saved != nil {
			opts.Width, opts.Height = saved.Width, saved.Height
		}
		return newWailsSurface(wailsApp, opts, dataDir, presenter.Ready, presenter.Closed)
	}, nil)

	InjectWebViewNavigationHandler(presenter.AppURL())

	// macOS dock click with no windows open
	wailsApp.Event.OnApplicationEvent(events.Mac.ApplicationShouldHandleReopen, func(event *application.ApplicationEvent) {
		if quitting.Load() {
			return
		}
		if _, created, err := presenter.Activate(len(wailsApp.Window.GetAll())); err != nil {
			logging.Error("failed to reopen window", "error", err)
		} else if created {
			logging.Debug("main window recreated")
		}
	})

	lifecycle.OnBackendExited(func(exit lifecycle.BackendExit) {
		if exit.Expected || quitting.Load() {
			return
		}
		logging.Error("backend exited unexpectedly, quitting", "pid", exit.PID, "exit_code", exit.ExitCode)
		exitCode.Store(1)
		safeQuit(wailsApp)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		if !quitting.Load() {
			logging.Info("received signal, shutting down")
			safeQuit(wailsApp)
		}
	}()

	// Start the backend off the main thread so wailsApp.Run() can start the
	// macOS event loop immediately.
	go func() {
		if err := h.start(ctx); err != nil {
			if ctx.Err() == nil {
				reportStartupFailure(err)
				exitCode.Store(1)
			}
			safeQuit(wailsApp)
			return
		}
		if _, err := presenter.Open(); err != nil {
			logging.Error("failed to create window", "error", err)
			exitCode.Store(1)
			safeQuit(wailsApp)
		}
	}()

	// Run Wails event loop on main thread (blocks until app.Quit()).
	if err := wailsApp.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Desktop error: %v\n", err)
		exitCode.Store(1)
	}
	return int(exitCode.Load())
}

// safeQuit calls App.Quit() with recovery from Wails v3 alpha panics during
// cleanup.
func safeQuit(app *application.App) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "[Desktop] Recovered from quit panic: %v\n", r)
			os.Exit(0)
		}
	}()
	app.Quit()
}

// wailsSurface adapts a Wails WebviewWindow to window.Surface.
type wailsSurface struct {
	win *application.WebviewWindow
}

func newWailsSurface(app *application.App, opts window.Options, dataDir string, onReady, onClosed func(window.Surface)) window.Surface {
	wopts := application.WebviewWindowOptions{
		Name:      opts.Name,
		Title:     opts.Title,
		Width:     opts.Width,
		Height:    opts.Height,
		MinWidth:  opts.MinWidth,
		MinHeight: opts.MinHeight,
		URL:       opts.URL,
		JS:        opts.JS,
		Hidden:    opts.Hidden,
	}
	if goruntime.GOOS == "windows" {
		// WebView2 only applies JS to HTML-mode windows; start from a blank
		// page so the script is registered for every later navigation.
		wopts.URL = ""
		wopts.HTML = " "
	}
	w := app.Window.NewWithOptions(wopts)
	if goruntime.GOOS == "windows" && opts.URL != "" {
		w.SetURL(opts.URL)
	}

	s := wailsSurface{win: w}
	var shown atomic.Bool
	w.OnWindowEvent(events.Common.WindowRuntimeReady, func(_ *application.WindowEvent) {
		// first paint only; later navigations keep the user's window state
		if shown.CompareAndSwap(false, true) {
			onReady(s)
		}
	})
	w.OnWindowEvent(events.Common.WindowClosing, func(_ *application.WindowEvent) {
		saveWindowState(dataDir, w)
		onClosed(s)
	})
	return s
}

func (s wailsSurface) Show()         { s.win.Show() }
func (s wailsSurface) Focus()        { s.win.Focus() }
func (s wailsSurface) Close()        { s.win.Close() }
func (s wailsSurface) UnMaximise()   { s.win.UnMaximise() }
func (s wailsSurface) UnFullscreen() { s.win.UnFullscreen() }
func (s wailsSurface) Name() string  { return s.win.Name() }
