package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// SecurityHeaders is the header set applied to API responses.
type SecurityHeaders struct {
	ContentSecurityPolicy string
	XContentTypeOptions   string
	XFrameOptions         string
	ReferrerPolicy        string
	PermissionsPolicy     string
	CacheControl          string
}

// APISecurityHeaders returns headers for JSON API responses.
func APISecurityHeaders() SecurityHeaders {
	return SecurityHeaders{
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		XContentTypeOptions:   "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=()",
		CacheControl:          "no-store",
	}
}

// SecurityHeadersMiddleware sets APISecurityHeaders on every response.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	headers := APISecurityHeaders()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", headers.ContentSecurityPolicy)
			h.Set("X-Content-Type-Options", headers.XContentTypeOptions)
			h.Set("X-Frame-Options", headers.XFrameOptions)
			h.Set("Referrer-Policy", headers.ReferrerPolicy)
			h.Set("Permissions-Policy", headers.PermissionsPolicy)
			h.Set("Cache-Control", headers.CacheControl)
			next.ServeHTTP(w, r)
		})
	}
}

// IsLocalhostOrigin reports whether origin is an http(s) loopback origin.
func IsLocalhostOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// CORSMiddleware allows credentialed requests from localhost origins and
// from the configured app origins. Other origins get no CORS headers, so
// browsers block them.
func CORSMiddleware(allowed ...string) func(http.Handler) http.Handler {
	extra := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		if u, err := url.Parse(a); err == nil && u.Host != "" {
			extra[u.Scheme+"://"+u.Host] = true
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (IsLocalhostOrigin(origin) || extra[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
