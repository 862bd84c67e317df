// Package keyring stores the session secret in the OS keychain.
package keyring

import (
	"fmt"
	"os"

	zkr "github.com/zalando/go-keyring"
)

const (
	serviceName = "promptmetal"
	accountName = "session-secret"

	DisabledEnv = "PROMPTMETAL_KEYRING_DISABLED"
)

// ErrNotFound is returned by Get when no secret has been stored.
var ErrNotFound = zkr.ErrNotFound

// Get retrieves the session secret from the OS keychain.
func Get() (string, error) {
	secret, err := zkr.Get(serviceName, accountName)
	if err != nil {
		return "", fmt.Errorf("keychain get: %w", err)
	}
	return secret, nil
}

// Set stores the session secret in the OS keychain.
func Set(secret string) error {
	return zkr.Set(serviceName, accountName, secret)
}

// Available returns true if the OS keychain is functional.
// Returns false if PROMPTMETAL_KEYRING_DISABLED=1 is set (headless/CI/Docker).
// Otherwise probes the keychain with a test write/read/delete cycle.
func Available() bool {
	if os.Getenv(DisabledEnv) == "1" {
		return false
	}
	testService := "promptmetal-keyring-probe"
	testAccount := "probe"
	if err := zkr.Set(testService, testAccount, "ok"); err != nil {
		return false
	}
	_ = zkr.Delete(testService, testAccount)
	return true
}
