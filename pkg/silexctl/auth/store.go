package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

// DefaultStorePath returns the default token cache file for a backend, one
// slot per backend under the user's config directory.
func DefaultStorePath(backend Backend) string {
	name := string(backend) + "-token.json"
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, "silexctl", name)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".silexctl", name)
}

// TokenStore is single-slot durable storage for one Credential. Load does not
// judge staleness; an expired credential is still returned and the caller
// checks validity.
type TokenStore interface {
	// Save overwrites any previously stored credential.
	Save(cred Credential) error
	// Load returns the stored credential. A missing or unparsable slot is
	// reported as not found, not as an error; errors are reserved for I/O
	// failures.
	Load() (Credential, bool, error)
	// Clear removes the stored credential. Clearing an empty slot is not an
	// error.
	Clear() error
}

// FileStore keeps the credential as a JSON file. Writes go through a temp
// file and rename so a crash mid-write cannot leave a truncated slot.
type FileStore struct {
	Path string
}

func (s *FileStore) Save(cred Credential) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	content, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set token file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

func (s *FileStore) Load() (Credential, bool, error) {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credential{}, false, nil
		}
		return Credential{}, false, err
	}
	var cred Credential
	if err := json.Unmarshal(content, &cred); err != nil {
		return Credential{}, false, nil
	}
	return cred, true, nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// KeyringStore keeps the credential in the OS keychain, one secret per
// backend account name.
type KeyringStore struct {
	Service string
	Account string
}

func (s *KeyringStore) Save(cred Credential) error {
	content, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	if err := keyring.Set(s.Service, s.Account, string(content)); err != nil {
		return fmt.Errorf("failed to store credential in keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Load() (Credential, bool, error) {
	secret, err := keyring.Get(s.Service, s.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credential{}, false, nil
		}
		return Credential{}, false, err
	}
	var cred Credential
	if err := json.Unmarshal([]byte(secret), &cred); err != nil {
		return Credential{}, false, nil
	}
	return cred, true, nil
}

func (s *KeyringStore) Clear() error {
	if err := keyring.Delete(s.Service, s.Account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
