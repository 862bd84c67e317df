package auth

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logic/auth"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

// SuccessMessageType is posted to the opener window after a successful login.
const SuccessMessageType = "OAUTH_AUTH_SUCCESS"

var successPage = template.Must(template.New("oauth-success").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>PromptMetal</title></head>
<body>
<p>Conta Google conectada. Você já pode fechar esta janela.</p>
<script>
(function () {
  if (window.opener) {
    window.opener.postMessage({ type: {{.Type}} }, {{.Origin}});
    window.close();
  } else {
    window.location.href = '/';
  }
})();
</script>
</body>
</html>
`))

// OAuth redirect target
func GoogleCallbackHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.WithContext(r.Context()).With("route", "google_callback")

		var req types.GoogleCallbackRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.BadRequest(w, httputil.MsgInvalidRequest)
			return
		}
		if req.Code == "" {
			if req.Error != "" {
				log.Warn("google consent denied", "error", req.Error)
			}
			httputil.BadRequest(w, httputil.MsgMissingCode)
			return
		}
		if err := svcCtx.Sessions.VerifyState(w, r, req.State); err != nil {
			log.Warn("oauth state rejected", "error", err)
			httputil.BadRequest(w, httputil.MsgInvalidState)
			return
		}

		l := auth.NewGoogleCallbackLogic(r.Context(), svcCtx)
		tok, err := l.Exchange(req.Code)
		if err != nil {
			log.Error("token exchange failed", "error", err)
			httputil.InternalError(w, httputil.MsgAuthFailed)
			return
		}
		if err := svcCtx.Sessions.SaveToken(w, r, tok); err != nil {
			log.Error("failed to store session", "error", err)
			httputil.InternalError(w, httputil.MsgAuthFailed)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_ = successPage.Execute(w, struct{ Type, Origin string }{
			Type:   SuccessMessageType,
			Origin: origin(svcCtx.Config.BaseURL()),
		})
	}
}

func origin(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "*"
	}
	return u.Scheme + "://" + u.Host
}
