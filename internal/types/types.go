package types

import "github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive"

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Mode      string `json:"mode"`
	Timestamp string `json:"timestamp"`
}

type GoogleAuthURLResponse struct {
	Url string `json:"url"`
}

type GoogleCallbackRequest struct {
	Code  string `form:"code"`
	State string `form:"state"`
	Error string `form:"error"`
}

type GoogleStatusResponse struct {
	Connected bool `json:"connected"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type BackupResponse struct {
	Success bool          `json:"success"`
	File    gdrive.File   `json:"file"`
	Backups []gdrive.File `json:"backups"`
}

type RestoreRequest struct {
	FileId string `form:"fileId"`
}

type HistoryResponse struct {
	Backups []gdrive.File `json:"backups"`
}

type UploadFileRequest struct {
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	Content    string `json:"content"`
	FolderName string `json:"folderName,omitempty"`
}

type UploadFileResponse struct {
	Id          string `json:"id"`
	WebViewLink string `json:"webViewLink"`
}
