package window

import (
	"fmt"
	"net"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
)

// MessagePrefix marks the only raw message the page may send to the host.
const MessagePrefix = "promptmetal:open:"

// HandleMessage processes a raw message posted by the bootstrap script.
// It returns true when the message was an open request that reached the OS
// opener; anything else is ignored.
func (p *Presenter) HandleMessage(message string) bool {
	target, ok := strings.CutPrefix(message, MessagePrefix)
	if !ok {
		return false
	}
	target = strings.TrimSpace(target)
	if !IsExternal(p.appURL, target) {
		logging.Debug("ignored open request", "url", target)
		return false
	}
	if err := p.opener(target); err != nil {
		logging.Warn("open external url failed", "url", target, "error", err)
		return false
	}
	return true
}

// IsExternal reports whether target is an http(s) URL outside the app's own
// origin. Loopback hosts on the same port count as the app itself.
func IsExternal(appURL, target string) bool {
	t, err := url.Parse(target)
	if err != nil || t.Host == "" {
		return false
	}
	if t.Scheme != "http" && t.Scheme != "https" {
		return false
	}

	a, err := url.Parse(appURL)
	if err != nil || a.Host == "" {
		return true
	}
	if a.Scheme != t.Scheme || effectivePort(a) != effectivePort(t) {
		return true
	}
	ah, th := strings.ToLower(a.Hostname()), strings.ToLower(t.Hostname())
	if ah == th {
		return false
	}
	return !(isLoopback(ah) && isLoopback(th))
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	if u.Scheme == "https" {
		return "443"
	}
	return "80"
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// OpenExternal opens an http(s) URL in the default browser.
func OpenExternal(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q URL", u.Scheme)
	}

	var cmd string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{target}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", target}
	default:
		cmd = "xdg-open"
		args = []string{target}
	}
	return exec.Command(cmd, args...).Start()
}
