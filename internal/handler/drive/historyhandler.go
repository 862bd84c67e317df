package drive

import (
	"net/http"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	drivelogic "github.com/Pavarotty7/Prompt-Metal-sub001/internal/logic/drive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
)

func HistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := drivelogic.NewHistoryLogic(r.Context(), svcCtx)
		resp, err := l.History()
		if err != nil {
			writeError(w, r, "history", err, httputil.MsgHistoryFailed)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
