package drive

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

const defaultMimeType = "application/octet-stream"

type UploadFileLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Upload an arbitrary file (e.g. a receipt) into a Drive folder
func NewUploadFileLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UploadFileLogic {
	return &UploadFileLogic{
		Logger: logging.WithContext(ctx).With("operation", "upload_file"),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UploadFileLogic) UploadFile(req *types.UploadFileRequest) (resp *types.UploadFileResponse, err error) {
	name := strings.TrimSpace(req.FileName)
	if name == "" {
		return nil, fmt.Errorf("%w: fileName is required", ErrInvalidPayload)
	}
	content, err := decodeContent(req.Content)
	if err != nil {
		return nil, err
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	folder := strings.TrimSpace(req.FolderName)
	if folder == "" {
		folder = l.svcCtx.Config.Drive.UploadFolder
	}

	start := time.Now()
	defer func() { l.svcCtx.DriveMetrics.Observe("upload_file", start, err) }()

	client, ctx, cancel, err := connect(l.ctx, l.svcCtx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	folderID, err := gdrive.EnsureFolder(ctx, client, folder)
	if err != nil {
		return nil, fmt.Errorf("ensure folder %q: %w", folder, err)
	}
	file, err := client.Upload(ctx, folderID, name, mimeType, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	l.Info("file uploaded", "file", file.Name, "folder", folder, "bytes", len(content))
	return &types.UploadFileResponse{Id: file.ID, WebViewLink: file.WebViewLink}, nil
}

// decodeContent accepts plain standard base64 or a data URL.
func decodeContent(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ";base64,")
		if i < 0 {
			return nil, fmt.Errorf("%w: content is not a base64 data URL", ErrInvalidPayload)
		}
		s = s[i+len(";base64,"):]
	}
	if s == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidPayload)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: content is not valid base64", ErrInvalidPayload)
	}
	return data, nil
}
