package gdrive_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive/gdrivetest"
)

func TestEnsureFolderCreatesOnce(t *testing.T) {
	fake := gdrivetest.New(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	id1, err := gdrive.EnsureFolder(ctx, fake, "PromptMetal Backups")
	require.NoError(t, err)
	id2, err := gdrive.EnsureFolder(ctx, fake, "PromptMetal Backups")
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, fake.Calls("CreateFolder"))
	assert.Equal(t, 2, fake.Calls("FindFolder"))
}

func TestEnsureFolderPropagatesLookupFailure(t *testing.T) {
	fake := gdrivetest.New(time.Now())
	boom := errors.New("quota exceeded")
	fake.FailOn("FindFolder", boom)

	_, err := gdrive.EnsureFolder(context.Background(), fake, "x")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, fake.Calls("CreateFolder"))
}

// driveServer is a minimal fake of the Drive v3 REST surface.
type driveServer struct {
	mu       sync.Mutex
	queries  []string
	orderBy  []string
	uploads  []string
	deleted  []string
	created  []string
	contents map[string]string
}

func (d *driveServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		d.queries = append(d.queries, r.URL.Query().Get("q"))
		d.orderBy = append(d.orderBy, r.URL.Query().Get("orderBy"))
		d.mu.Unlock()

		q := r.URL.Query().Get("q")
		var files []map[string]string
		switch {
		case strings.Contains(q, "name='Missing'"):
		case strings.Contains(q, "mimeType="):
			files = append(files, map[string]string{"id": "folder-1", "name": "Backups"})
		default:
			files = append(files,
				map[string]string{"id": "b", "name": "new.json", "createdTime": "2025-01-02T00:00:00Z"},
				map[string]string{"id": "a", "name": "old.json", "createdTime": "2025-01-01T00:00:00Z"},
			)
		}
		writeJSON(w, http.StatusOK, map[string]any{"files": files})
	})
	mux.HandleFunc("POST /drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		d.mu.Lock()
		d.created = append(d.created, body["name"].(string))
		d.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"id": "folder-new"})
	})
	mux.HandleFunc("POST /upload/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		d.mu.Lock()
		d.uploads = append(d.uploads, string(data))
		d.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{
			"id":          "up-1",
			"name":        "backup.json",
			"createdTime": "2025-01-03T00:00:00Z",
			"webViewLink": "https://drive.google.com/file/d/up-1/view",
		})
	})
	mux.HandleFunc("GET /drive/v3/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		content, ok := d.contents[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"code": 404, "message": "File not found"},
			})
			return
		}
		_, _ = io.WriteString(w, content)
	})
	mux.HandleFunc("DELETE /drive/v3/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		d.deleted = append(d.deleted, r.PathValue("id"))
		d.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestService(t *testing.T, d *driveServer) *gdrive.Service {
	t.Helper()
	srv := httptest.NewServer(d.handler())
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	svc, err := gdrive.NewService(context.Background(), ts, option.WithEndpoint(srv.URL+"/drive/v3/"))
	require.NoError(t, err)
	return svc
}

func TestServiceFindFolder(t *testing.T) {
	d := &driveServer{}
	svc := newTestService(t, d)
	ctx := context.Background()

	id, err := svc.FindFolder(ctx, "Ana's Backups")
	require.NoError(t, err)
	assert.Equal(t, "folder-1", id)
	assert.Equal(t,
		`mimeType='application/vnd.google-apps.folder' and name='Ana\'s Backups' and trashed=false`,
		d.queries[0])

	_, err = svc.FindFolder(ctx, "Missing")
	assert.ErrorIs(t, err, gdrive.ErrNotFound)
}

func TestServiceCreateFolder(t *testing.T) {
	d := &driveServer{}
	svc := newTestService(t, d)

	id, err := svc.CreateFolder(context.Background(), "PromptMetal Files")
	require.NoError(t, err)
	assert.Equal(t, "folder-new", id)
	assert.Equal(t, []string{"PromptMetal Files"}, d.created)
}

func TestServiceListNewestFirst(t *testing.T) {
	d := &driveServer{}
	svc := newTestService(t, d)

	files, err := svc.List(context.Background(), "folder-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "b", files[0].ID)
	assert.Equal(t, "2025-01-02T00:00:00Z", files[0].CreatedTime)
	assert.Equal(t, "'folder-1' in parents and trashed=false", d.queries[0])
	assert.Equal(t, "createdTime desc", d.orderBy[0])
}

func TestServiceUpload(t *testing.T) {
	d := &driveServer{}
	svc := newTestService(t, d)

	f, err := svc.Upload(context.Background(), "folder-1", "backup.json", "application/json", strings.NewReader(`{"projects":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "up-1", f.ID)
	assert.Equal(t, "https://drive.google.com/file/d/up-1/view", f.WebViewLink)
	require.Len(t, d.uploads, 1)
	assert.Contains(t, d.uploads[0], `{"projects":[]}`)
	assert.Contains(t, d.uploads[0], "folder-1")
}

func TestServiceDownloadAndDelete(t *testing.T) {
	d := &driveServer{contents: map[string]string{"a": `{"ok":true}`}}
	svc := newTestService(t, d)
	ctx := context.Background()

	data, err := svc.Download(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	_, err = svc.Download(ctx, "nope")
	assert.ErrorIs(t, err, gdrive.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "a"))
	assert.Equal(t, []string{"a"}, d.deleted)
}
