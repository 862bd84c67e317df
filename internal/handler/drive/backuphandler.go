package drive

import (
	"errors"
	"io"
	"net/http"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	drivelogic "github.com/Pavarotty7/Prompt-Metal-sub001/internal/logic/drive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
)

// Store the posted JSON document as a new backup
func BackupHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, svcCtx.Config.Server.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httputil.ErrorWithCode(w, http.StatusRequestEntityTooLarge, httputil.MsgInvalidRequest)
				return
			}
			httputil.BadRequest(w, httputil.MsgInvalidRequest)
			return
		}

		l := drivelogic.NewBackupLogic(r.Context(), svcCtx)
		resp, err := l.Backup(body)
		if err != nil {
			writeError(w, r, "backup", err, httputil.MsgBackupFailed)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
