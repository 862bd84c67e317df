package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
)

// ErrNotConfigured is returned when no Google OAuth client is configured.
var ErrNotConfigured = errors.New("google oauth client not configured")

type GoogleURLLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Build the Google consent URL
func NewGoogleURLLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GoogleURLLogic {
	return &GoogleURLLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GoogleURL returns the consent URL and the state value it carries. The
// caller binds the state to the browser before handing out the URL.
func (l *GoogleURLLogic) GoogleURL() (url, state string, err error) {
	if !l.svcCtx.Config.IsGoogleConfigured() {
		return "", "", ErrNotConfigured
	}
	state = uuid.NewString()
	url = l.svcCtx.OAuth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	l.Debug("generated google consent url", "redirect_uri", l.svcCtx.OAuth.RedirectURL)
	return url, state, nil
}
