package drive

import (
	"net/http"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	drivelogic "github.com/Pavarotty7/Prompt-Metal-sub001/internal/logic/drive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

// Return the stored backup document as-is
func RestoreHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RestoreRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.BadRequest(w, httputil.MsgInvalidRequest)
			return
		}

		l := drivelogic.NewRestoreLogic(r.Context(), svcCtx)
		data, err := l.Restore(&req)
		if err != nil {
			writeError(w, r, "restore", err, httputil.MsgRestoreFailed)
			return
		}
		httputil.WriteRawJSON(w, http.StatusOK, data)
	}
}
