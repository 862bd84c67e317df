// Package defaults locates the PromptMetal data directory.
//
// Platform paths:
//
//	macOS:   ~/Library/Application Support/PromptMetal/
//	Windows: %AppData%\PromptMetal\
//	Linux:   ~/.config/promptmetal/
//
// Override with PROMPTMETAL_DATA_DIR environment variable.
package defaults

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const DataDirEnv = "PROMPTMETAL_DATA_DIR"

// DataDir returns the platform-appropriate data directory.
func DataDir() (string, error) {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}

	// Linux: lowercase per XDG convention
	if runtime.GOOS == "linux" {
		return filepath.Join(configDir, "promptmetal"), nil
	}
	return filepath.Join(configDir, "PromptMetal"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// Path joins name onto the data directory.
func Path(name string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
