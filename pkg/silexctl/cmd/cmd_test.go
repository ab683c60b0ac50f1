package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opensilex/silexctl/pkg/silexctl/config"
)

// configPathForTest isolates both the config file and the token/verifier
// directories, which live under the user config dir.
func configPathForTest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return filepath.Join(dir, "config.yaml")
}

// newPlatformServer fakes the OpenSilex REST surface the commands touch.
func newPlatformServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/security/authenticate", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Identifier string `json:"identifier"`
			Password   string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Identifier != "admin" || body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": {"token": "cmd-test-token"}}`))
	})
	mux.HandleFunc("/rest/core/experiments", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"metadata": {"pagination": {"totalCount": 1}},
			"result": [{"uri": "dev:expt/trial-a", "name": "Trial A", "start_date": "2025-03-01"}]
		}`))
	})
	mux.HandleFunc("/rest/core/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var observations []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&observations))
		uris := make([]string, len(observations))
		for i := range observations {
			uris[i] = "dev:data/record-" + string(rune('a'+i))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"result": uris})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeTestConfig(t *testing.T, path, host string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OpenSilex.Host = host
	require.NoError(t, config.Save(path, &cfg))
}

func runCommand(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: path, OutputWriter: buf})
	root.SetArgs(args)
	root.SetOut(buf)
	root.SetErr(buf)
	err := root.Execute()
	return buf.String(), err
}
