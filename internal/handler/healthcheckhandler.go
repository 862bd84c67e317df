package handler

import (
	"net/http"
	"time"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

func HealthCheckHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, &types.HealthResponse{
			Status:    "ok",
			Version:   svcCtx.Version,
			Mode:      svcCtx.Config.App.Env,
			Timestamp: svcCtx.Clock.Now().UTC().Format(time.RFC3339),
		})
	}
}
