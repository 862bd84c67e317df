package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestGoogleSessionMiddleware(t *testing.T) {
	store, err := session.NewStore(session.Options{Secret: "s", Secure: true})
	require.NoError(t, err)

	var seen *oauth2.Token
	h := GoogleSessionMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = TokenFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/drive/backup", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)

	cookieRec := httptest.NewRecorder()
	require.NoError(t, store.SaveToken(cookieRec, httptest.NewRequest(http.MethodGet, "/", nil), &oauth2.Token{AccessToken: "a"}))
	req := httptest.NewRequest(http.MethodPost, "/api/drive/backup", nil)
	for _, c := range cookieRec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "a", seen.AccessToken)
}

func TestRateLimiterPerIP(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "other clients keep their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"))
}

func TestRateLimiterForgetsIdleVisitors(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("1.1.1.1")
	now = now.Add(2 * time.Minute)
	l.Allow("2.2.2.2")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "1.1.1.1")
	assert.Contains(t, l.visitors, "2.2.2.2")
}

func TestRateLimiterMiddleware(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.5, Burst: 1})
	h := l.Middleware()(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/url", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestIsLocalhostOrigin(t *testing.T) {
	assert.True(t, IsLocalhostOrigin("http://localhost:5173"))
	assert.True(t, IsLocalhostOrigin("http://127.0.0.1:3000"))
	assert.True(t, IsLocalhostOrigin("http://[::1]:3000"))
	assert.False(t, IsLocalhostOrigin("https://evil.example"))
	assert.False(t, IsLocalhostOrigin("http://localhost.evil.example"))
	assert.False(t, IsLocalhostOrigin("file://localhost"))
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware("https://metal.example.com")(okHandler)

	tests := []struct {
		origin string
		allow  bool
	}{
		{"http://localhost:5173", true},
		{"https://metal.example.com", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/google/status", nil)
		req.Header.Set("Origin", tt.origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if tt.allow {
			assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		} else {
			assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/drive/backup", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeadersMiddleware()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
