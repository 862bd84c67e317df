// Package gdrive is the thin Google Drive v3 layer used by the backup and
// upload endpoints.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const FolderMimeType = "application/vnd.google-apps.folder"

// ErrNotFound is returned when a folder or file does not exist.
var ErrNotFound = errors.New("drive: not found")

// File is the metadata exposed to API callers.
type File struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CreatedTime string `json:"createdTime"`
	WebViewLink string `json:"webViewLink,omitempty"`
}

// Client is the set of Drive operations the backend needs.
type Client interface {
	FindFolder(ctx context.Context, name string) (string, error)
	CreateFolder(ctx context.Context, name string) (string, error)
	Upload(ctx context.Context, folderID, name, mimeType string, content io.Reader) (*File, error)
	// List returns the non-trashed files in folderID, newest first.
	List(ctx context.Context, folderID string) ([]File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	Delete(ctx context.Context, fileID string) error
}

// Factory builds a Client bound to a user's token.
type Factory func(ctx context.Context, tok *oauth2.Token) (Client, error)

// EnsureFolder returns the id of the folder called name, creating it when
// absent.
func EnsureFolder(ctx context.Context, c Client, name string) (string, error) {
	id, err := c.FindFolder(ctx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return c.CreateFolder(ctx, name)
}

// Service implements Client on the Drive v3 REST API.
type Service struct {
	files *drive.FilesService
}

// NewService creates a Service. opts are applied after the token source, so
// tests can point it at a fake endpoint.
func NewService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*Service, error) {
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := drive.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Service{files: svc.Files}, nil
}

// NewFactory returns a Factory that refreshes tokens through cfg.
func NewFactory(cfg *oauth2.Config, opts ...option.ClientOption) Factory {
	return func(ctx context.Context, tok *oauth2.Token) (Client, error) {
		// The token source outlives the request, so it must not carry its context.
		ts := cfg.TokenSource(context.WithoutCancel(ctx), tok)
		return NewService(ctx, ts, opts...)
	}
}

func (s *Service) FindFolder(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("mimeType='%s' and name='%s' and trashed=false", FolderMimeType, escapeQuery(name))
	res, err := s.files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("find folder %q: %w", name, err)
	}
	if len(res.Files) == 0 {
		return "", fmt.Errorf("folder %q: %w", name, ErrNotFound)
	}
	return res.Files[0].Id, nil
}

func (s *Service) CreateFolder(ctx context.Context, name string) (string, error) {
	f, err := s.files.Create(&drive.File{Name: name, MimeType: FolderMimeType}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return f.Id, nil
}

func (s *Service) Upload(ctx context.Context, folderID, name, mimeType string, content io.Reader) (*File, error) {
	meta := &drive.File{Name: name, MimeType: mimeType}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	f, err := s.files.Create(meta).
		Media(content, googleapi.ContentType(mimeType)).
		Fields("id, name, createdTime, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", name, err)
	}
	return fromDrive(f), nil
}

func (s *Service) List(ctx context.Context, folderID string) ([]File, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))
	var out []File
	err := s.files.List().
		Q(q).
		OrderBy("createdTime desc").
		Fields("nextPageToken, files(id, name, createdTime)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				out = append(out, *fromDrive(f))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folderID, err)
	}
	return out, nil
}

func (s *Service) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.files.Get(fileID).Context(ctx).Download()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("file %s: %w", fileID, ErrNotFound)
		}
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileID, err)
	}
	return data, nil
}

func (s *Service) Delete(ctx context.Context, fileID string) error {
	if err := s.files.Delete(fileID).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("file %s: %w", fileID, ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", fileID, err)
	}
	return nil
}

func fromDrive(f *drive.File) *File {
	return &File{ID: f.Id, Name: f.Name, CreatedTime: f.CreatedTime, WebViewLink: f.WebViewLink}
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

// escapeQuery escapes a literal for use inside single quotes in a Drive
// query.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
