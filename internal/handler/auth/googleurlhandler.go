package auth

import (
	"errors"
	"net/http"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logic/auth"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

// Get the Google consent URL
func GoogleURLHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := auth.NewGoogleURLLogic(r.Context(), svcCtx)
		url, state, err := l.GoogleURL()
		if errors.Is(err, auth.ErrNotConfigured) {
			httputil.ErrorWithCode(w, http.StatusServiceUnavailable, httputil.MsgOAuthNotConfigured)
			return
		}
		if err != nil {
			httputil.InternalError(w, httputil.MsgAuthFailed)
			return
		}
		if err := svcCtx.Sessions.SetState(w, r, state); err != nil {
			logging.WithContext(r.Context()).Error("failed to store oauth state", "error", err)
			httputil.InternalError(w, httputil.MsgAuthFailed)
			return
		}
		httputil.OkJSON(w, &types.GoogleAuthURLResponse{Url: url})
	}
}
