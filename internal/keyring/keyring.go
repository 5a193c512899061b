// Package keyring keeps wallet secrets in the OS keychain so they do not
// have to live in .env files.
package keyring

import (
	"errors"
	"fmt"
	"os"

	zkr "github.com/zalando/go-keyring"
)

const serviceName = "walletpilot"

// Secret names.
const (
	Password    = "wallet-password"
	SecretWords = "secret-words"
	PrivateKey  = "private-key"
)

// Names lists every secret walletpilot stores.
var Names = []string{Password, SecretWords, PrivateKey}

// ErrNotFound is returned when a secret is not in the keychain.
var ErrNotFound = zkr.ErrNotFound

// Get retrieves a secret from the OS keychain.
func Get(name string) (string, error) {
	v, err := zkr.Get(serviceName, name)
	if err != nil {
		return "", fmt.Errorf("keychain get %s: %w", name, err)
	}
	return v, nil
}

// Lookup is Get that treats a missing secret as empty.
func Lookup(name string) (string, error) {
	v, err := Get(name)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// Set stores a secret in the OS keychain.
func Set(name, value string) error {
	if err := zkr.Set(serviceName, name, value); err != nil {
		return fmt.Errorf("keychain set %s: %w", name, err)
	}
	return nil
}

// Delete removes a secret from the OS keychain.
func Delete(name string) error {
	return zkr.Delete(serviceName, name)
}

// Available returns true if the OS keychain is functional.
// Returns false if WALLETPILOT_KEYRING_DISABLED=1 is set (headless/CI/Docker).
// Otherwise probes the keychain with a test write/read/delete cycle.
func Available() bool {
	if os.Getenv("WALLETPILOT_KEYRING_DISABLED") == "1" {
		return false
	}
	testService := "walletpilot-keyring-probe"
	testAccount := "probe"
	if err := zkr.Set(testService, testAccount, "ok"); err != nil {
		return false
	}
	_ = zkr.Delete(testService, testAccount)
	return true
}
