package middleware

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/session"
)

type contextKey string

const tokenContextKey contextKey = "googleToken"

// GoogleSessionMiddleware rejects requests without a decodable token cookie
// and stores the token in the request context. Rejected requests never
// reach a handler, so no provider call is made.
func GoogleSessionMiddleware(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := store.Token(r)
			if err != nil {
				logging.WithContext(r.Context()).Debug("rejected request without google session", "path", r.URL.Path, "error", err)
				httputil.Unauthorized(w, httputil.MsgNotAuthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), tok)))
		})
	}
}

// WithToken returns a context carrying tok.
func WithToken(ctx context.Context, tok *oauth2.Token) context.Context {
	return context.WithValue(ctx, tokenContextKey, tok)
}

// TokenFromContext returns the token stored by GoogleSessionMiddleware.
func TokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	tok, ok := ctx.Value(tokenContextKey).(*oauth2.Token)
	return tok, ok && tok != nil
}
