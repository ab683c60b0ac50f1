package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// newPKCEPair returns a fresh code verifier and its S256 challenge.
func newPKCEPair() (string, string, error) {
	verifier, err := randomToken(32)
	if err != nil {
		return "", "", err
	}
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}

func randomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Pending verifiers are written to disk keyed by state so that a later,
// separate process invocation can complete the code exchange.
type verifierStore struct {
	dir string
}

func (s *verifierStore) path(state string) (string, error) {
	if state == "" || strings.ContainsAny(state, "/\\") {
		return "", errors.New("invalid state parameter")
	}
	return filepath.Join(s.dir, "verifier-"+state), nil
}

func (s *verifierStore) put(state, verifier string) error {
	path, err := s.path(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create verifier dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(verifier), 0o600); err != nil {
		return fmt.Errorf("failed to store code verifier: %w", err)
	}
	return nil
}

// take returns and removes the verifier for state. A missing verifier is
// reported as not found so the exchange fails closed.
func (s *verifierStore) take(state string) (string, bool) {
	path, err := s.path(state)
	if err != nil {
		return "", false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	_ = os.Remove(path)
	return strings.TrimSpace(string(content)), true
}

func defaultVerifierDir() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, "silexctl", "pkce")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".silexctl", "pkce")
}
