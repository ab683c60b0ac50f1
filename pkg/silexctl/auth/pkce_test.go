package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPKCEPair(t *testing.T) {
	verifier, challenge, err := newPKCEPair()
	require.NoError(t, err)
	require.NotEmpty(t, verifier)

	sum := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), challenge)

	// A second pair must not repeat.
	verifier2, challenge2, err := newPKCEPair()
	require.NoError(t, err)
	assert.NotEqual(t, verifier, verifier2)
	assert.NotEqual(t, challenge, challenge2)
}

func TestVerifierStore_TakeConsumes(t *testing.T) {
	store := &verifierStore{dir: t.TempDir()}
	require.NoError(t, store.put("state-1", "verifier-value"))

	got, ok := store.take("state-1")
	require.True(t, ok)
	assert.Equal(t, "verifier-value", got)

	// Consumed: a second take fails closed.
	_, ok = store.take("state-1")
	assert.False(t, ok)
}

func TestVerifierStore_RejectsPathTraversal(t *testing.T) {
	store := &verifierStore{dir: t.TempDir()}
	assert.Error(t, store.put("../escape", "v"))
	assert.Error(t, store.put("", "v"))

	_, ok := store.take("../escape")
	assert.False(t, ok)
}

func TestVerifierStore_CreatesDir(t *testing.T) {
	store := &verifierStore{dir: filepath.Join(t.TempDir(), "pkce")}
	require.NoError(t, store.put("s", "v"))
	got, ok := store.take("s")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}
