// Package window manages the single native surface that shows the PromptMetal
// UI. The native toolkit is injected through Factory so the presenter runs
// the same way in the desktop build and in tests.
package window

import (
	"errors"
	"sync"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/lifecycle"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
)

// MainName is the name given to the main surface.
const MainName = "main"

// Surface is the subset of a native webview window the presenter drives.
// In desktop mode a Wails WebviewWindow implements this.
type Surface interface {
	Show()
	Focus()
	Close()
	UnMaximise()
	UnFullscreen()
	Name() string
}

// Options configures a new surface.
type Options struct {
	Name      string
	Title     string
	URL       string
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	// JS runs after every navigation.
	JS string
	// Hidden surfaces are shown by Presenter.Ready on first paint.
	Hidden bool
}

// Factory creates a native surface.
type Factory func(opts Options) Surface

// Opener hands a URL to the OS default handler.
type Opener func(url string) error

var ErrNoFactory = errors.New("window factory not configured")

// Presenter owns at most one main surface bound to the backend URL.
type Presenter struct {
	appURL  string
	title   string
	factory Factory
	opener  Opener
	events  *lifecycle.Manager

	mu   sync.Mutex
	main Surface
}

// NewPresenter creates a presenter for appURL. A nil opener uses OpenExternal.
func NewPresenter(appURL, title string, factory Factory, opener Opener) *Presenter {
	if opener == nil {
		opener = OpenExternal
	}
	if title == "" {
		title = "PromptMetal"
	}
	return &Presenter{appURL: appURL, title: title, factory: factory, opener: opener}
}

// SetEvents routes window lifecycle events to m instead of the global manager.
func (p *Presenter) SetEvents(m *lifecycle.Manager) {
	p.events = m
}

// AppURL returns the URL the main surface loads.
func (p *Presenter) AppURL() string { return p.appURL }

// Open creates the main surface, hidden, or returns the existing one.
func (p *Presenter) Open() (Surface, error) {
	p.mu.Lock()
	if p.main != nil {
		s := p.main
		p.mu.Unlock()
		return s, nil
	}
	if p.factory == nil {
		p.mu.Unlock()
		return nil, ErrNoFactory
	}

	s := p.factory(Options{
		Name:      MainName,
		Title:     p.title,
		URL:       p.appURL,
		Width:     1280,
		Height:    860,
		MinWidth:  800,
		MinHeight: 600,
		JS:        BootstrapJS,
		Hidden:    true,
	})
	if s == nil {
		p.mu.Unlock()
		return nil, errors.New("failed to create window")
	}
	p.main = s
	p.mu.Unlock()

	logging.Info("window created", "url", p.appURL)
	p.emit(lifecycle.EventWindowOpened, s.Name())
	return s, nil
}

// Ready puts s into a plain windowed state and then shows it. Called once
// the page has painted so the user never sees an intermediate layout.
func (p *Presenter) Ready(s Surface) {
	if s == nil {
		return
	}
	s.UnMaximise()
	s.UnFullscreen()
	s.Show()
	s.Focus()
}

// Activate handles the platform "reopen" event. A new main surface is
// created only when no windows are open.
func (p *Presenter) Activate(open int) (Surface, bool, error) {
	if open > 0 {
		return nil, false, nil
	}
	p.mu.Lock()
	stale := p.main
	p.main = nil
	p.mu.Unlock()
	if stale != nil {
		logging.Debug("dropping stale window handle", "name", stale.Name())
	}

	s, err := p.Open()
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Closed clears the handle when s is the main surface.
func (p *Presenter) Closed(s Surface) {
	p.mu.Lock()
	if p.main == nil || (s != nil && p.main != s) {
		p.mu.Unlock()
		return
	}
	name := p.main.Name()
	p.main = nil
	p.mu.Unlock()

	p.emit(lifecycle.EventWindowClosed, name)
}

// Current returns the main surface, or nil.
func (p *Presenter) Current() Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.main
}

func (p *Presenter) emit(event lifecycle.Event, data any) {
	if p.events != nil {
		p.events.Emit(event, data)
		return
	}
	lifecycle.Emit(event, data)
}
