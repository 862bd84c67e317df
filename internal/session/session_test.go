package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestStore(t *testing.T, secure bool) *Store {
	t.Helper()
	s, err := NewStore(Options{Secret: "test-secret", Secure: secure})
	require.NoError(t, err)
	return s
}

// carry copies Set-Cookie headers from rec into a new request.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestNewStoreRequiresSecret(t *testing.T) {
	_, err := NewStore(Options{})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestStore(t, true)
	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	rec := httptest.NewRecorder()
	require.NoError(t, s.SaveToken(rec, httptest.NewRequest(http.MethodGet, "/", nil), tok))

	c := findCookie(rec, DefaultCookieName)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, 30*24*60*60, c.MaxAge)
	assert.NotContains(t, c.Value, "refresh", "token must be encrypted")

	req := carry(rec)
	assert.True(t, s.Present(req))
	got, err := s.Token(req)
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.True(t, tok.Expiry.Equal(got.Expiry))
}

func TestInsecureCookieFallsBackToLax(t *testing.T) {
	s := newTestStore(t, false)
	rec := httptest.NewRecorder()
	require.NoError(t, s.SaveToken(rec, httptest.NewRequest(http.MethodGet, "/", nil), &oauth2.Token{AccessToken: "a"}))

	c := findCookie(rec, DefaultCookieName)
	require.NotNil(t, c)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestTokenWithoutCookie(t *testing.T) {
	s := newTestStore(t, true)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.False(t, s.Present(req))
	_, err := s.Token(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTamperedCookie(t *testing.T) {
	s := newTestStore(t, true)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "garbage"})

	// presence is all the status endpoint looks at
	assert.True(t, s.Present(req))
	_, err := s.Token(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCookieFromOtherSecretRejected(t *testing.T) {
	a := newTestStore(t, true)
	b, err := NewStore(Options{Secret: "other-secret", Secure: true})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, a.SaveToken(rec, httptest.NewRequest(http.MethodGet, "/", nil), &oauth2.Token{AccessToken: "a"}))

	_, err = b.Token(carry(rec))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClearExpiresCookie(t *testing.T) {
	s := newTestStore(t, true)
	rec := httptest.NewRecorder()
	require.NoError(t, s.Clear(rec, httptest.NewRequest(http.MethodPost, "/", nil)))

	c := findCookie(rec, DefaultCookieName)
	require.NotNil(t, c)
	assert.True(t, c.MaxAge < 0)
}

func TestStateVerification(t *testing.T) {
	s := newTestStore(t, true)

	rec := httptest.NewRecorder()
	require.NoError(t, s.SetState(rec, httptest.NewRequest(http.MethodGet, "/", nil), "abc"))
	c := findCookie(rec, StateCookieName)
	require.NotNil(t, c)
	assert.Equal(t, 600, c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	assert.NoError(t, s.VerifyState(httptest.NewRecorder(), carry(rec), "abc"))
	assert.ErrorIs(t, s.VerifyState(httptest.NewRecorder(), carry(rec), "xyz"), ErrStateMismatch)
	assert.ErrorIs(t, s.VerifyState(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "abc"), ErrStateMismatch)
}

func TestVerifyStateConsumesCookie(t *testing.T) {
	s := newTestStore(t, true)
	rec := httptest.NewRecorder()
	require.NoError(t, s.SetState(rec, httptest.NewRequest(http.MethodGet, "/", nil), "abc"))

	out := httptest.NewRecorder()
	require.NoError(t, s.VerifyState(out, carry(rec), "abc"))
	c := findCookie(out, StateCookieName)
	require.NotNil(t, c)
	assert.True(t, c.MaxAge < 0)
}
