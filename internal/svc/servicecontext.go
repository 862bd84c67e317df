package svc

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/config"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/local"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/metrics"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/session"
)

type ServiceContext struct {
	Config  config.Config
	Version string // Build version (e.g. "v1.2.0" or "dev")
	Clock   clockwork.Clock

	OAuth    *oauth2.Config
	Sessions *session.Store
	// Drive builds a Drive client for the caller's token. Tests swap in a fake.
	Drive gdrive.Factory

	Registry     *prometheus.Registry
	HTTPMetrics  *metrics.HTTPMetrics
	DriveMetrics *metrics.DriveMetrics
}

// NewServiceContext wires the backend dependencies from c. When no session
// secret is configured one is loaded from (or generated into) local storage.
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	secret := c.Session.Secret
	if secret == "" {
		var err error
		if secret, err = local.SessionSecret(); err != nil {
			return nil, fmt.Errorf("session secret: %w", err)
		}
		logging.Debug("using stored session secret")
	}

	sessions, err := session.NewStore(session.Options{
		CookieName: c.Session.CookieName,
		Secret:     secret,
		MaxAge:     c.SessionMaxAge(),
		Secure:     c.IsSecureCookie(),
	})
	if err != nil {
		return nil, err
	}

	if !c.IsGoogleConfigured() {
		logging.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set - Google Drive endpoints disabled")
	}

	oauthCfg := NewOAuthConfig(c)
	reg := metrics.NewRegistry()

	return &ServiceContext{
		Config:       c,
		Clock:        clockwork.NewRealClock(),
		OAuth:        oauthCfg,
		Sessions:     sessions,
		Drive:        gdrive.NewFactory(oauthCfg),
		Registry:     reg,
		HTTPMetrics:  metrics.NewHTTPMetrics(reg),
		DriveMetrics: metrics.NewDriveMetrics(reg),
	}, nil
}

// NewOAuthConfig returns the Google OAuth client for the drive.file scope.
func NewOAuthConfig(c config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		RedirectURL:  c.RedirectURL(),
		Scopes:       []string{drive.DriveFileScope},
		Endpoint:     google.Endpoint,
	}
}
