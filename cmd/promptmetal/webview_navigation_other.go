//go:build desktop && !linux

package cli

// InjectWebViewNavigationHandler is a no-op outside Linux; the bootstrap
// script in the main window routes external links there.
func InjectWebViewNavigationHandler(appURL string) {}
