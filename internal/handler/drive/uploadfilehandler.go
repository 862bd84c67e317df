package drive

import (
	"net/http"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	drivelogic "github.com/Pavarotty7/Prompt-Metal-sub001/internal/logic/drive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

// Upload a base64 encoded file into a Drive folder
func UploadFileHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, svcCtx.Config.Server.MaxBodyBytes)

		var req types.UploadFileRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.BadRequest(w, httputil.MsgInvalidRequest)
			return
		}

		l := drivelogic.NewUploadFileLogic(r.Context(), svcCtx)
		resp, err := l.UploadFile(&req)
		if err != nil {
			writeError(w, r, "upload_file", err, httputil.MsgUploadFailed)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
