package auth

import (
	"net/http"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

func GoogleLogoutHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svcCtx.Sessions.Clear(w, r); err != nil {
			logging.WithContext(r.Context()).Warn("failed to clear session cookie", "error", err)
		}
		httputil.OkJSON(w, &types.SuccessResponse{Success: true})
	}
}
