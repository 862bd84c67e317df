// Package spa serves the built front end, or proxies to the front-end dev
// server during development.
package spa

import (
	"errors"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
)

// ErrNoIndex is returned when the build directory has no index.html.
var ErrNoIndex = errors.New("spa: index.html not found")

// Handler serves static files from fsys and falls back to index.html for any
// path that is not a file, so client-side routes resolve.
func Handler(fsys fs.FS) (http.Handler, error) {
	index, err := fs.ReadFile(fsys, "index.html")
	if err != nil {
		return nil, ErrNoIndex
	}
	fileServer := http.FileServer(http.FS(fsys))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" || name == "index.html" {
			serveIndex(w, index)
			return
		}
		info, err := fs.Stat(fsys, name)
		if err != nil || info.IsDir() {
			serveIndex(w, index)
			return
		}
		// Hashed build assets never change.
		if strings.HasPrefix(name, "assets/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		fileServer.ServeHTTP(w, r)
	}), nil
}

// DirHandler is Handler over a directory on disk.
func DirHandler(dir string) (http.Handler, error) {
	return Handler(os.DirFS(dir))
}

func serveIndex(w http.ResponseWriter, index []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(index)
}

// DevProxy forwards every request to the live-reloading dev server at
// target, including websocket upgrades for hot reload.
func DevProxy(target string) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("spa: dev server URL must be absolute")
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
		},
		FlushInterval: -1,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logging.WithContext(r.Context()).Warn("dev server unreachable", "target", target, "path", r.URL.Path, "error", err)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("front-end dev server not running at " + target + "\n"))
		},
	}
	return proxy, nil
}
