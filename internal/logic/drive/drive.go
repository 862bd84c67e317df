package drive

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/middleware"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/session"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
)

// BackupPrefix starts the name of every backup file.
const BackupPrefix = "promptmetal-backup"

var (
	ErrNoBackup       = errors.New("no backup found")
	ErrInvalidPayload = errors.New("invalid payload")
)

// connect builds a Drive client for the token on ctx and returns a context
// bounded by the configured Drive timeout.
func connect(ctx context.Context, svcCtx *svc.ServiceContext) (gdrive.Client, context.Context, context.CancelFunc, error) {
	tok, ok := middleware.TokenFromContext(ctx)
	if !ok {
		return nil, nil, nil, session.ErrNoSession
	}
	opCtx, cancel := context.WithTimeout(ctx, svcCtx.Config.Drive.Timeout)
	client, err := svcCtx.Drive(opCtx, tok)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return client, opCtx, cancel, nil
}

// backupName is the file name for a backup taken at t.
func backupName(t time.Time) string {
	return BackupPrefix + "-" + t.UTC().Format("2006-01-02T15-04-05.000Z") + ".json"
}

func isBackup(f gdrive.File) bool {
	return strings.HasPrefix(f.Name, BackupPrefix) && strings.HasSuffix(f.Name, ".json")
}

// listBackups returns the backups in the backup folder, newest first. A
// missing folder yields ErrNoBackup.
func listBackups(ctx context.Context, c gdrive.Client, folder string) (string, []gdrive.File, error) {
	folderID, err := c.FindFolder(ctx, folder)
	if errors.Is(err, gdrive.ErrNotFound) {
		return "", nil, ErrNoBackup
	}
	if err != nil {
		return "", nil, err
	}
	files, err := c.List(ctx, folderID)
	if err != nil {
		return folderID, nil, err
	}
	return folderID, filterBackups(files), nil
}

func filterBackups(files []gdrive.File) []gdrive.File {
	out := make([]gdrive.File, 0, len(files))
	for _, f := range files {
		if isBackup(f) {
			out = append(out, gdrive.File{ID: f.ID, Name: f.Name, CreatedTime: f.CreatedTime})
		}
	}
	return out
}
