package local

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/defaults"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/keyring"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
)

// Settings holds local configuration that can't be in the embedded yaml
type Settings struct {
	// SessionSecret is only written here when the OS keychain is unavailable.
	SessionSecret string `json:"sessionSecret,omitempty"`
}

// settingsPath returns the path to the local settings file
func settingsPath() (string, error) {
	return defaults.Path("settings.json")
}

// LoadSettings loads local settings. A missing file yields empty settings.
func LoadSettings() (*Settings, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &settings, nil
}

// SaveSettings persists settings to disk
func SaveSettings(settings *Settings) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// SessionSecret returns the cookie secret, generating it on first use. The
// OS keychain is preferred; settings.json is the fallback.
func SessionSecret() (string, error) {
	if keyring.Available() {
		secret, err := keyring.Get()
		if err == nil && secret != "" {
			return secret, nil
		}
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			logging.Warn("keychain read failed, using settings file", "error", err)
		} else {
			secret, err := generateSecret()
			if err != nil {
				return "", err
			}
			if err := keyring.Set(secret); err == nil {
				return secret, nil
			}
			logging.Warn("keychain write failed, using settings file")
		}
	}

	settings, err := LoadSettings()
	if err != nil {
		return "", err
	}
	if settings.SessionSecret != "" {
		return settings.SessionSecret, nil
	}
	secret, err := generateSecret()
	if err != nil {
		return "", err
	}
	settings.SessionSecret = secret
	if err := SaveSettings(settings); err != nil {
		return "", fmt.Errorf("save session secret: %w", err)
	}
	return secret, nil
}

// generateSecret creates a cryptographically secure random secret
func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
