// Package lifecycle provides event hooks for PromptMetal startup and shutdown.
package lifecycle

import (
	"sync"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
)

// Event types for lifecycle hooks
type Event string

const (
	// Backend process events
	EventBackendStarted Event = "backend_started"
	EventBackendReady   Event = "backend_ready"
	EventBackendExited  Event = "backend_exited"

	// Window events
	EventWindowOpened Event = "window_opened"
	EventWindowClosed Event = "window_closed"

	EventShutdownStarted Event = "shutdown_started"
)

// Handler is a function that handles a lifecycle event
type Handler func(event Event, data any)

// Manager manages lifecycle event subscriptions and dispatching
type Manager struct {
	mu       sync.RWMutex
	handlers map[Event][]Handler
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{handlers: make(map[Event][]Handler)}
}

// Global lifecycle manager
var global = NewManager()

// On registers a handler for a lifecycle event
func On(event Event, handler Handler) {
	global.On(event, handler)
}

// Emit dispatches an event to all registered handlers
func Emit(event Event, data any) {
	global.Emit(event, data)
}

// On registers a handler for a lifecycle event
func (m *Manager) On(event Event, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], handler)
}

// Emit dispatches an event to all registered handlers
func (m *Manager) Emit(event Event, data any) {
	m.mu.RLock()
	handlers := m.handlers[event]
	m.mu.RUnlock()

	logging.Debug("lifecycle event", "event", event)
	for _, h := range handlers {
		// Run handlers synchronously (they can spawn goroutines if needed)
		h(event, data)
	}
}

// BackendExit describes how the supervised backend process ended.
type BackendExit struct {
	PID      int
	ExitCode int
	Expected bool
}

// OnBackendExited is a convenience function to register a backend exit handler
func OnBackendExited(handler func(exit BackendExit)) {
	On(EventBackendExited, func(e Event, data any) {
		if d, ok := data.(BackendExit); ok {
			handler(d)
		}
	})
}

// OnBackendReady registers a handler called with the backend URL once its
// port accepts connections.
func OnBackendReady(handler func(url string)) {
	On(EventBackendReady, func(e Event, data any) {
		if url, ok := data.(string); ok {
			handler(url)
		}
	})
}

// OnShutdown is a convenience function to register a shutdown handler
func OnShutdown(handler func()) {
	On(EventShutdownStarted, func(e Event, data any) {
		handler()
	})
}
