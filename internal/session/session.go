// Package session keeps the user's Google tokens in an encrypted cookie.
// There is no server-side session store.
package session

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
)

const (
	DefaultCookieName = "google_tokens"
	StateCookieName   = "promptmetal_oauth_state"

	tokenKey = "token"
	stateKey = "state"
	stateTTL = 10 * time.Minute
)

var (
	// ErrNoSession means the request carries no usable token cookie.
	ErrNoSession = errors.New("no google session")
	// ErrStateMismatch means the callback state does not match the one issued.
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// Options configures a Store.
type Options struct {
	CookieName string
	Secret     string
	MaxAge     time.Duration
	Secure     bool
}

// Store reads and writes the token and OAuth state cookies.
type Store struct {
	cookies *sessions.CookieStore
	name    string
	maxAge  int
	secure  bool
}

// NewStore derives signing and encryption keys from opts.Secret.
func NewStore(opts Options) (*Store, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 30 * 24 * time.Hour
	}

	hashKey := sha256.Sum256([]byte("promptmetal/session/hash:" + opts.Secret))
	blockKey := sha256.Sum256([]byte("promptmetal/session/block:" + opts.Secret))
	cookies := sessions.NewCookieStore(hashKey[:], blockKey[:])
	cookies.MaxAge(int(opts.MaxAge.Seconds()))

	return &Store{
		cookies: cookies,
		name:    opts.CookieName,
		maxAge:  int(opts.MaxAge.Seconds()),
		secure:  opts.Secure,
	}, nil
}

// CookieName returns the token cookie name.
func (s *Store) CookieName() string { return s.name }

// Present reports whether the request carries the token cookie. The cookie
// is not decoded.
func (s *Store) Present(r *http.Request) bool {
	c, err := r.Cookie(s.name)
	return err == nil && c.Value != ""
}

// Token decodes the stored token. ErrNoSession is returned when the cookie
// is missing, tampered with, or empty.
func (s *Store) Token(r *http.Request) (*oauth2.Token, error) {
	if !s.Present(r) {
		return nil, ErrNoSession
	}
	sess, err := s.cookies.Get(r, s.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	raw, ok := sess.Values[tokenKey].(string)
	if !ok || raw == "" {
		return nil, ErrNoSession
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return &tok, nil
}

// SaveToken writes tok into the token cookie.
func (s *Store) SaveToken(w http.ResponseWriter, r *http.Request, tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	sess, _ := s.cookies.New(r, s.name)
	sess.Options = s.tokenOptions(s.maxAge)
	sess.Values[tokenKey] = string(raw)
	return sess.Save(r, w)
}

// Clear expires the token cookie.
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.cookies.New(r, s.name)
	sess.Options = s.tokenOptions(-1)
	return sess.Save(r, w)
}

// SetState remembers the state issued with a consent URL.
func (s *Store) SetState(w http.ResponseWriter, r *http.Request, state string) error {
	sess, _ := s.cookies.New(r, StateCookieName)
	sess.Options = s.stateOptions(int(stateTTL.Seconds()))
	sess.Values[stateKey] = state
	return sess.Save(r, w)
}

// VerifyState checks state against the cookie and consumes it.
func (s *Store) VerifyState(w http.ResponseWriter, r *http.Request, state string) error {
	sess, err := s.cookies.Get(r, StateCookieName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStateMismatch, err)
	}
	want, _ := sess.Values[stateKey].(string)

	sess.Options = s.stateOptions(-1)
	delete(sess.Values, stateKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear state cookie: %w", err)
	}

	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(state)) != 1 {
		return ErrStateMismatch
	}
	return nil
}

// tokenOptions allows the cookie on cross-site requests, which browsers
// only accept together with Secure.
func (s *Store) tokenOptions(maxAge int) *sessions.Options {
	sameSite := http.SameSiteLaxMode
	if s.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
	}
}

func (s *Store) stateOptions(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
