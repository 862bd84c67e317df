package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

type BackupLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Upload a timestamped backup and prune old ones
func NewBackupLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BackupLogic {
	return &BackupLogic{
		Logger: logging.WithContext(ctx).With("operation", "backup"),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *BackupLogic) Backup(payload []byte) (resp *types.BackupResponse, err error) {
	if len(bytes.TrimSpace(payload)) == 0 || !json.Valid(payload) {
		return nil, ErrInvalidPayload
	}

	start := time.Now()
	defer func() { l.svcCtx.DriveMetrics.Observe("backup", start, err) }()

	client, ctx, cancel, err := connect(l.ctx, l.svcCtx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	cfg := l.svcCtx.Config.Drive
	folderID, err := gdrive.EnsureFolder(ctx, client, cfg.BackupFolder)
	if err != nil {
		return nil, fmt.Errorf("ensure backup folder: %w", err)
	}

	name := backupName(l.svcCtx.Clock.Now())
	file, err := client.Upload(ctx, folderID, name, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	files, err := client.List(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	backups := filterBackups(files)

	// Pruning is best effort; the new backup is already stored.
	kept := backups
	if len(backups) > cfg.Retention {
		kept = append([]gdrive.File(nil), backups[:cfg.Retention]...)
		pruned := 0
		for _, old := range backups[cfg.Retention:] {
			if err := client.Delete(ctx, old.ID); err != nil {
				l.Warn("failed to delete old backup", "file", old.Name, "error", err)
				kept = append(kept, old)
				continue
			}
			pruned++
		}
		l.svcCtx.DriveMetrics.Pruned(pruned)
	}

	l.Info("backup stored", "file", file.Name, "retained", len(kept))
	return &types.BackupResponse{
		Success: true,
		File:    gdrive.File{ID: file.ID, Name: file.Name, CreatedTime: file.CreatedTime},
		Backups: kept,
	}, nil
}
