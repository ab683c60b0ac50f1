package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperimentListRequiresLogin(t *testing.T) {
	path := configPathForTest(t)
	server := newPlatformServer(t)
	writeTestConfig(t, path, server.URL)

	_, err := runCommand(t, path, "experiment", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")
}

func TestExperimentListAfterLogin(t *testing.T) {
	path := configPathForTest(t)
	server := newPlatformServer(t)
	writeTestConfig(t, path, server.URL)

	_, err := runCommand(t, path, "auth", "login", "-u", "admin", "-p", "secret")
	require.NoError(t, err)

	out, err := runCommand(t, path, "experiment", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "dev:expt/trial-a")
	assert.Contains(t, out, "Trial A")

	out, err = runCommand(t, path, "experiment", "list", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"uri": "dev:expt/trial-a"`)
}

func TestExperimentListWithTokenOverride(t *testing.T) {
	path := configPathForTest(t)
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": []}`))
	}))
	t.Cleanup(server.Close)
	writeTestConfig(t, path, server.URL)

	_, err := runCommand(t, path, "experiment", "list", "--token", "override-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer override-token", gotAuth)
}

func TestDataAddFromFile(t *testing.T) {
	path := configPathForTest(t)
	server := newPlatformServer(t)
	writeTestConfig(t, path, server.URL)

	_, err := runCommand(t, path, "auth", "login", "-u", "admin", "-p", "secret")
	require.NoError(t, err)

	observations := []map[string]any{
		{"target": "dev:so/plot-1", "variable": "dev:variable/plant-height", "date": "2025-06-01T10:00:00Z", "value": 42.5},
		{"target": "dev:so/plot-2", "variable": "dev:variable/plant-height", "date": "2025-06-01T10:00:00Z", "value": 38.1},
	}
	content, err := json.Marshal(observations)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "observations.json")
	require.NoError(t, os.WriteFile(file, content, 0o600))

	out, err := runCommand(t, path, "data", "add", "-f", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 observations")
}

func TestDataAddBadFile(t *testing.T) {
	path := configPathForTest(t)
	server := newPlatformServer(t)
	writeTestConfig(t, path, server.URL)

	file := filepath.Join(t.TempDir(), "observations.json")
	require.NoError(t, os.WriteFile(file, []byte("not json"), 0o600))

	_, err := runCommand(t, path, "data", "add", "-f", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestMissingHostErrors(t *testing.T) {
	path := configPathForTest(t)
	writeTestConfig(t, path, "")

	_, err := runCommand(t, path, "experiment", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no OpenSilex host configured")
}
