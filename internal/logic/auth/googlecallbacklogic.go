package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
)

type GoogleCallbackLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Exchange the authorization code for tokens
func NewGoogleCallbackLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GoogleCallbackLogic {
	return &GoogleCallbackLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GoogleCallbackLogic) Exchange(code string) (tok *oauth2.Token, err error) {
	if !l.svcCtx.Config.IsGoogleConfigured() {
		return nil, ErrNotConfigured
	}
	defer func() { l.svcCtx.DriveMetrics.Exchange(err) }()

	ctx, cancel := context.WithTimeout(l.ctx, l.svcCtx.Config.Google.ExchangeTimeout)
	defer cancel()

	tok, err = l.svcCtx.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	l.Info("google account connected", "has_refresh_token", tok.RefreshToken != "")
	return tok, nil
}
