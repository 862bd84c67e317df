package defaults

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDirOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(DataDirEnv, tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	if dir != tmp {
		t.Errorf("Expected %s, got %s", tmp, dir)
	}
}

func TestEnsureDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "promptmetal")
	t.Setenv(DataDirEnv, dir)

	got, err := EnsureDataDir()
	if err != nil {
		t.Fatalf("EnsureDataDir failed: %v", err)
	}
	info, err := os.Stat(got)
	if err != nil || !info.IsDir() {
		t.Fatalf("data directory not created: %v", err)
	}
}

func TestPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(DataDirEnv, tmp)

	p, err := Path("settings.json")
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if p != filepath.Join(tmp, "settings.json") {
		t.Errorf("unexpected path %s", p)
	}
}
