package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensilex/silexctl/pkg/silexctl/config"
)

func TestConfigInitWritesFile(t *testing.T) {
	path := configPathForTest(t)

	out, err := runCommand(t, path, "config", "init",
		"--host", "https://phenome.example.org",
		"--keycloak-url", "https://sso.example.org",
		"--realm", "phenotyping",
		"--client-id", "silexctl")
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://phenome.example.org", cfg.OpenSilex.Host)
	assert.Equal(t, "phenotyping", cfg.Keycloak.Realm)
	assert.Equal(t, "auto", cfg.AuthMethod)
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := configPathForTest(t)

	_, err := runCommand(t, path, "config", "init", "--host", "https://one.example.org")
	require.NoError(t, err)

	_, err = runCommand(t, path, "config", "init", "--host", "https://two.example.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCommand(t, path, "config", "init", "--host", "https://two.example.org", "--force")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://two.example.org", cfg.OpenSilex.Host)
}

func TestConfigViewMasksSecret(t *testing.T) {
	path := configPathForTest(t)

	cfg := config.DefaultConfig()
	cfg.OpenSilex.Host = "https://phenome.example.org"
	cfg.Keycloak.ClientSecret = "topsecret"
	require.NoError(t, config.Save(path, &cfg))

	out, err := runCommand(t, path, "config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "https://phenome.example.org")
	assert.Contains(t, out, "***")
	assert.NotContains(t, out, "topsecret")
}

func TestConfigViewWithoutFileShowsDefaults(t *testing.T) {
	path := configPathForTest(t)

	out, err := runCommand(t, path, "config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "auth-method: auto")
}
