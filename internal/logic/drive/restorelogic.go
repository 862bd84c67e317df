package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

type RestoreLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRestoreLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RestoreLogic {
	return &RestoreLogic{
		Logger: logging.WithContext(ctx).With("operation", "restore"),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Restore returns the raw JSON of the requested backup, or of the newest one
// when no file id is given.
func (l *RestoreLogic) Restore(req *types.RestoreRequest) (data []byte, err error) {
	start := time.Now()
	defer func() { l.svcCtx.DriveMetrics.Observe("restore", start, err) }()

	client, ctx, cancel, err := connect(l.ctx, l.svcCtx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	fileID := req.FileId
	if fileID == "" {
		_, backups, err := listBackups(ctx, client, l.svcCtx.Config.Drive.BackupFolder)
		if err != nil {
			return nil, err
		}
		if len(backups) == 0 {
			return nil, ErrNoBackup
		}
		fileID = backups[0].ID
	}

	data, err = client.Download(ctx, fileID)
	if errors.Is(err, gdrive.ErrNotFound) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("backup %s is not valid JSON", fileID)
	}

	l.Info("backup restored", "file_id", fileID, "bytes", len(data))
	return data, nil
}
