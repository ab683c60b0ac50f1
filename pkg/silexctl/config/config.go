// Package config handles the silexctl configuration file and its default
// locations.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"
)

type Config struct {
	Version      string         `yaml:"version"`
	OpenSilex    OpenSilex      `yaml:"opensilex,omitempty"`
	Keycloak     Keycloak       `yaml:"keycloak,omitempty"`
	AuthMethod   string         `yaml:"auth-method,omitempty"`
	TokenStorage string         `yaml:"token-storage,omitempty"`
	Settings     Settings       `yaml:"settings,omitempty"`
}

type OpenSilex struct {
	Host string `yaml:"host"`
}

type Keycloak struct {
	URL              string   `yaml:"url,omitempty"`
	Realm            string   `yaml:"realm,omitempty"`
	ClientID         string   `yaml:"client-id,omitempty"`
	ClientSecret     string   `yaml:"client-secret,omitempty"`
	ClientSecretEnv  string   `yaml:"client-secret-env,omitempty"`
	ClientSecretFile string   `yaml:"client-secret-file,omitempty"`
	RedirectURI      string   `yaml:"redirect-uri,omitempty"`
	Scopes           []string `yaml:"scopes,omitempty"`
}

type Settings struct {
	OutputFormat string `yaml:"output-format,omitempty"`
	PageSize     int    `yaml:"page-size,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version:      VersionV1,
		AuthMethod:   "auto",
		TokenStorage: "file",
		Settings: Settings{
			OutputFormat: "table",
			PageSize:     50,
		},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

// ApplyEnv overlays the recognized environment variables onto the config.
// Environment values win over file values so scripts can point one install
// at several servers.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("OPENSILEX_HOST"); v != "" {
		cfg.OpenSilex.Host = v
	}
	if v := os.Getenv("KEYCLOAK_URL"); v != "" {
		cfg.Keycloak.URL = v
	}
	if v := os.Getenv("KEYCLOAK_REALM"); v != "" {
		cfg.Keycloak.Realm = v
	}
	if v := os.Getenv("KEYCLOAK_CLIENT_ID"); v != "" {
		cfg.Keycloak.ClientID = v
	}
	if v := os.Getenv("KEYCLOAK_CLIENT_SECRET"); v != "" {
		cfg.Keycloak.ClientSecret = v
	}
	if v := os.Getenv("KEYCLOAK_REDIRECT_URI"); v != "" {
		cfg.Keycloak.RedirectURI = v
	}
	if v := os.Getenv("SILEXCTL_AUTH_METHOD"); v != "" {
		cfg.AuthMethod = v
	}
	if v := os.Getenv("SILEXCTL_TOKEN_STORAGE"); v != "" {
		cfg.TokenStorage = v
	}
}

// ResolveClientSecret returns the Keycloak client secret from the first
// configured source: literal value, environment variable, or file.
func (k Keycloak) ResolveClientSecret() (string, error) {
	if k.ClientSecret != "" {
		return k.ClientSecret, nil
	}
	if k.ClientSecretEnv != "" {
		value := strings.TrimSpace(os.Getenv(k.ClientSecretEnv))
		if value == "" {
			return "", fmt.Errorf("client secret env var not set: %s", k.ClientSecretEnv)
		}
		return value, nil
	}
	if k.ClientSecretFile != "" {
		content, err := os.ReadFile(k.ClientSecretFile)
		if err != nil {
			return "", fmt.Errorf("failed to read client secret file: %w", err)
		}
		return strings.TrimSpace(string(content)), nil
	}
	return "", nil
}
