// Package gdrivetest provides an in-memory gdrive.Client for tests.
package gdrivetest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/gdrive"
)

// StoredFile is a file held by the fake.
type StoredFile struct {
	gdrive.File
	Parent   string
	MimeType string
	Content  []byte
	created  time.Time
}

// Fake is an in-memory Drive. The zero value is not usable; call New.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	folders map[string]string // name -> id
	files   map[string]*StoredFile
	calls   map[string]int
	fail    map[string]error
}

// New returns an empty Fake whose clock starts at start.
func New(start time.Time) *Fake {
	return &Fake{
		now:     start,
		folders: make(map[string]string),
		files:   make(map[string]*StoredFile),
		calls:   make(map[string]int),
		fail:    make(map[string]error),
	}
}

// Factory returns a gdrive.Factory that always hands out f.
func (f *Fake) Factory() gdrive.Factory {
	return func(ctx context.Context, tok *oauth2.Token) (gdrive.Client, error) {
		f.record("Factory")
		return f, nil
	}
}

// FailOn makes every later call to method return err.
func (f *Fake) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

// Calls returns how many times method was called.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods, Factory included.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// AddFolder creates a folder directly.
func (f *Fake) AddFolder(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addFolderLocked(name)
}

// AddFile stores a file in folderID directly, one second after the previous one.
func (f *Fake) AddFile(folderID, name string, content []byte) *StoredFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addFileLocked(folderID, name, "application/json", content)
}

// Files returns the files in folderID, newest first.
func (f *Fake) Files(folderID string) []StoredFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []StoredFile
	for _, file := range f.sortedLocked(folderID) {
		out = append(out, *file)
	}
	return out
}

func (f *Fake) FindFolder(ctx context.Context, name string) (string, error) {
	if err := f.enter("FindFolder"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.folders[name]
	if !ok {
		return "", fmt.Errorf("folder %q: %w", name, gdrive.ErrNotFound)
	}
	return id, nil
}

func (f *Fake) CreateFolder(ctx context.Context, name string) (string, error) {
	if err := f.enter("CreateFolder"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addFolderLocked(name), nil
}

func (f *Fake) Upload(ctx context.Context, folderID, name, mimeType string, content io.Reader) (*gdrive.File, error) {
	if err := f.enter("Upload"); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	file := f.addFileLocked(folderID, name, mimeType, data)
	out := file.File
	return &out, nil
}

func (f *Fake) List(ctx context.Context, folderID string) ([]gdrive.File, error) {
	if err := f.enter("List"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []gdrive.File
	for _, file := range f.sortedLocked(folderID) {
		out = append(out, gdrive.File{ID: file.ID, Name: file.Name, CreatedTime: file.CreatedTime})
	}
	return out, nil
}

func (f *Fake) Download(ctx context.Context, fileID string) ([]byte, error) {
	if err := f.enter("Download"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, gdrive.ErrNotFound)
	}
	return append([]byte(nil), file.Content...), nil
}

func (f *Fake) Delete(ctx context.Context, fileID string) error {
	if err := f.enter("Delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[fileID]; !ok {
		return fmt.Errorf("file %s: %w", fileID, gdrive.ErrNotFound)
	}
	delete(f.files, fileID)
	return nil
}

func (f *Fake) enter(method string) error {
	f.record(method)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[method]
}

func (f *Fake) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *Fake) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *Fake) addFolderLocked(name string) string {
	if id, ok := f.folders[name]; ok {
		return id
	}
	id := f.id("folder")
	f.folders[name] = id
	return id
}

func (f *Fake) addFileLocked(folderID, name, mimeType string, content []byte) *StoredFile {
	f.now = f.now.Add(time.Second)
	id := f.id("file")
	file := &StoredFile{
		File: gdrive.File{
			ID:          id,
			Name:        name,
			CreatedTime: f.now.UTC().Format(time.RFC3339),
			WebViewLink: "https://drive.google.com/file/d/" + id + "/view",
		},
		Parent:   folderID,
		MimeType: mimeType,
		Content:  content,
		created:  f.now,
	}
	f.files[id] = file
	return file
}

func (f *Fake) sortedLocked(folderID string) []*StoredFile {
	var out []*StoredFile
	for _, file := range f.files {
		if file.Parent == folderID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].created.After(out[j].created) })
	return out
}
