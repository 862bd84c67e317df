package drive

import (
	"errors"
	"net/http"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/httputil"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	drivelogic "github.com/Pavarotty7/Prompt-Metal-sub001/internal/logic/drive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/session"
)

// writeError maps a logic error onto a status code. Anything unclassified is
// a provider failure: logged with the route and reported as failMsg.
func writeError(w http.ResponseWriter, r *http.Request, route string, err error, failMsg string) {
	switch {
	case errors.Is(err, drivelogic.ErrInvalidPayload):
		httputil.BadRequest(w, httputil.MsgInvalidRequest)
	case errors.Is(err, session.ErrNoSession):
		httputil.Unauthorized(w, httputil.MsgNotAuthenticated)
	case errors.Is(err, drivelogic.ErrNoBackup), errors.Is(err, gdrive.ErrNotFound):
		httputil.NotFound(w, httputil.MsgNoBackup)
	default:
		logging.WithContext(r.Context()).Error("drive request failed", "route", route, "error", err)
		httputil.InternalError(w, failMsg)
	}
}
