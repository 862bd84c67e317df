package drive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/config"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive/gdrivetest"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/middleware"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/session"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/types"
)

var t0 = time.Date(2025, 6, 30, 23, 59, 58, 123e6, time.UTC)

func newSvcCtx(t *testing.T, fake *gdrivetest.Fake) *svc.ServiceContext {
	t.Helper()
	var c config.Config
	c.Normalize()
	return &svc.ServiceContext{
		Config: c,
		Clock:  clockwork.NewFakeClockAt(t0),
		Drive:  fake.Factory(),
	}
}

func authed() context.Context {
	return middleware.WithToken(context.Background(), &oauth2.Token{AccessToken: "at"})
}

func TestBackupName(t *testing.T) {
	assert.Equal(t, "promptmetal-backup-2025-06-30T23-59-58.123Z.json", backupName(t0))
	assert.Equal(t, backupName(t0), backupName(t0.In(time.FixedZone("BRT", -3*3600))))
}

func TestDecodeContent(t *testing.T) {
	data, err := decodeContent("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	data, err = decodeContent("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	for _, bad := range []string{"", "data:text/plain,hello", "not base64!"} {
		_, err := decodeContent(bad)
		assert.ErrorIs(t, err, ErrInvalidPayload, bad)
	}
}

func TestBackupWithoutTokenMakesNoCalls(t *testing.T) {
	fake := gdrivetest.New(t0)
	l := NewBackupLogic(context.Background(), newSvcCtx(t, fake))

	_, err := l.Backup([]byte(`{}`))
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Zero(t, fake.TotalCalls())
}

func TestBackupKeepsFilesThatFailToDelete(t *testing.T) {
	fake := gdrivetest.New(t0)
	folder := fake.AddFolder("PromptMetal Backups")
	for _, name := range []string{"promptmetal-backup-1.json", "promptmetal-backup-2.json", "promptmetal-backup-3.json"} {
		fake.AddFile(folder, name, []byte(`{}`))
	}
	fake.FailOn("Delete", errors.New("permission denied"))

	resp, err := NewBackupLogic(authed(), newSvcCtx(t, fake)).Backup([]byte(`{"x":1}`))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Backups, 4)
	assert.Len(t, fake.Files(folder), 4)
}

func TestBackupIgnoresForeignFilesWhenPruning(t *testing.T) {
	fake := gdrivetest.New(t0)
	folder := fake.AddFolder("PromptMetal Backups")
	fake.AddFile(folder, "readme.txt", []byte("keep me"))
	for i := 0; i < 3; i++ {
		fake.AddFile(folder, "promptmetal-backup-old.json", []byte(`{}`))
	}

	resp, err := NewBackupLogic(authed(), newSvcCtx(t, fake)).Backup([]byte(`{}`))
	require.NoError(t, err)
	assert.Len(t, resp.Backups, 3)
	assert.Equal(t, 1, fake.Calls("Delete"))

	names := map[string]bool{}
	for _, f := range fake.Files(folder) {
		names[f.Name] = true
	}
	assert.True(t, names["readme.txt"])
}

func TestRestoreRejectsNonJSON(t *testing.T) {
	fake := gdrivetest.New(t0)
	folder := fake.AddFolder("PromptMetal Backups")
	fake.AddFile(folder, "promptmetal-backup-x.json", []byte("garbage"))

	_, err := NewRestoreLogic(authed(), newSvcCtx(t, fake)).Restore(&types.RestoreRequest{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoBackup)
}

func TestUploadFileDefaults(t *testing.T) {
	fake := gdrivetest.New(t0)
	resp, err := NewUploadFileLogic(authed(), newSvcCtx(t, fake)).UploadFile(&types.UploadFileRequest{
		FileName: " nota.bin ",
		Content:  "AAE=",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.WebViewLink)

	folder, err := fake.FindFolder(context.Background(), "PromptMetal Files")
	require.NoError(t, err)
	files := fake.Files(folder)
	require.Len(t, files, 1)
	assert.Equal(t, "nota.bin", files[0].Name)
	assert.Equal(t, "application/octet-stream", files[0].MimeType)
}
