package drive

import (
	"context"
	"time"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

type HistoryLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HistoryLogic {
	return &HistoryLogic{
		Logger: logging.WithContext(ctx).With("operation", "history"),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HistoryLogic) History() (resp *types.HistoryResponse, err error) {
	start := time.Now()
	defer func() { l.svcCtx.DriveMetrics.Observe("history", start, err) }()

	client, ctx, cancel, err := connect(l.ctx, l.svcCtx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	_, backups, err := listBackups(ctx, client, l.svcCtx.Config.Drive.BackupFolder)
	if err != nil {
		return nil, err
	}
	if len(backups) == 0 {
		return nil, ErrNoBackup
	}
	return &types.HistoryResponse{Backups: backups}, nil
}
