package auth

import (
	"net/http"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

// Report whether a Google session cookie is present. The token itself is not
// validated here.
func GoogleStatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, &types.GoogleStatusResponse{Connected: svcCtx.Sessions.Present(r)})
	}
}
