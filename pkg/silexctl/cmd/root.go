package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opensilex/silexctl/pkg/silexctl/auth"
	"github.com/opensilex/silexctl/pkg/silexctl/client"
	"github.com/opensilex/silexctl/pkg/silexctl/config"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
}

type runtimeState struct {
	configPath           string
	cfg                  *config.Config
	outputFormat         string
	hostOverride         string
	tokenOverride        string
	methodOverride       string
	tokenStorageOverride string
	nonInteractive       bool
	verbose              bool
	writer               io.Writer
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{configPath: cfg.ConfigPath, writer: cfg.OutputWriter}

	root := &cobra.Command{
		Use:          "silexctl",
		Short:        "OpenSilex CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv("SILEXCTL_OUTPUT")
			}
			if rt.tokenOverride == "" {
				rt.tokenOverride = os.Getenv("SILEXCTL_TOKEN")
			}
			if !rt.nonInteractive {
				rt.nonInteractive = strings.EqualFold(os.Getenv("SILEXCTL_NON_INTERACTIVE"), "true")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("SILEXCTL_VERBOSE"), "true")
			}

			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
				return nil
			}

			loaded, err := config.Load(rt.configPath)
			if err != nil {
				if !os.IsNotExist(err) {
					return err
				}
				// No config file yet; env vars and flags may still carry
				// everything a command needs.
				defaults := config.DefaultConfig()
				loaded = &defaults
			}
			config.ApplyEnv(loaded)
			rt.cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, json, yaml")
	root.PersistentFlags().StringVar(&rt.hostOverride, "host", "", "OpenSilex server URL override")
	root.PersistentFlags().StringVar(&rt.tokenOverride, "token", "", "Bearer token override (bypass auth)")
	root.PersistentFlags().StringVar(&rt.methodOverride, "auth-method", "", "Auth method: opensilex, keycloak, auto")
	root.PersistentFlags().StringVar(&rt.tokenStorageOverride, "token-storage", "", "Token storage backend: file or keyring")
	root.PersistentFlags().BoolVar(&rt.nonInteractive, "non-interactive", false, "Fail instead of prompting")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable verbose logging")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewConfigCommand(),
		NewAuthCommand(),
		NewExperimentCommand(),
		NewVariableCommand(),
		NewObjectCommand(),
		NewDataCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) OutputFormat() string {
	if rt.outputFormat != "" {
		return rt.outputFormat
	}
	if rt.cfg != nil && rt.cfg.Settings.OutputFormat != "" {
		return rt.cfg.Settings.OutputFormat
	}
	return "table"
}

func (rt *runtimeState) PageSize() int {
	if rt.cfg != nil && rt.cfg.Settings.PageSize > 0 {
		return rt.cfg.Settings.PageSize
	}
	return 50
}

func (rt *runtimeState) resolveHost() string {
	if rt.hostOverride != "" {
		return rt.hostOverride
	}
	if rt.cfg != nil {
		return rt.cfg.OpenSilex.Host
	}
	return ""
}

func (rt *runtimeState) authMethod() string {
	if rt.methodOverride != "" {
		return rt.methodOverride
	}
	if rt.cfg != nil && rt.cfg.AuthMethod != "" {
		return rt.cfg.AuthMethod
	}
	return "auto"
}

func (rt *runtimeState) tokenStorage() string {
	if rt.tokenStorageOverride != "" {
		return rt.tokenStorageOverride
	}
	if rt.cfg != nil && rt.cfg.TokenStorage != "" {
		return rt.cfg.TokenStorage
	}
	return "file"
}

func (rt *runtimeState) tokenStore(backend auth.Backend) (auth.TokenStore, error) {
	switch rt.tokenStorage() {
	case "", "file":
		return &auth.FileStore{Path: auth.DefaultStorePath(backend)}, nil
	case "keyring", "keychain":
		return &auth.KeyringStore{Service: "silexctl", Account: string(backend)}, nil
	default:
		return nil, fmt.Errorf("unknown token storage: %s", rt.tokenStorage())
	}
}

func (rt *runtimeState) logger() *zap.Logger {
	if !rt.verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// authManager assembles the unified manager from the resolved config.
func (rt *runtimeState) authManager() (*auth.UnifiedManager, error) {
	if rt.cfg == nil {
		return nil, errors.New("config not loaded")
	}
	method, err := auth.ParseMethod(rt.authMethod())
	if err != nil {
		return nil, err
	}
	host := rt.resolveHost()
	if host == "" && method != auth.MethodKeycloak {
		return nil, errors.New("no OpenSilex host configured; set opensilex.host or pass --host")
	}
	osStore, err := rt.tokenStore(auth.BackendOpenSilex)
	if err != nil {
		return nil, err
	}
	kcStore, err := rt.tokenStore(auth.BackendKeycloak)
	if err != nil {
		return nil, err
	}
	secret, err := rt.cfg.Keycloak.ResolveClientSecret()
	if err != nil {
		return nil, err
	}
	return auth.NewUnifiedManager(auth.UnifiedConfig{
		Method: method,
		OpenSilex: auth.OpenSilexConfig{
			Host: host,
		},
		Keycloak: auth.KeycloakConfig{
			URL:          rt.cfg.Keycloak.URL,
			Realm:        rt.cfg.Keycloak.Realm,
			ClientID:     rt.cfg.Keycloak.ClientID,
			ClientSecret: secret,
			RedirectURI:  rt.cfg.Keycloak.RedirectURI,
			Scopes:       rt.cfg.Keycloak.Scopes,
		},
		OpenSilexStore: osStore,
		KeycloakStore:  kcStore,
	}, auth.WithLogger(rt.logger())), nil
}

// apiClient builds a REST client carrying the bearer header, taken from the
// --token override when set, otherwise from a saved credential.
func (rt *runtimeState) apiClient(ctx context.Context) (*client.Client, error) {
	host := rt.resolveHost()
	if host == "" {
		return nil, errors.New("no OpenSilex host configured; set opensilex.host or pass --host")
	}
	if rt.tokenOverride != "" {
		return client.New(host, client.WithBearer("Bearer "+rt.tokenOverride), client.WithLogger(rt.logger()))
	}
	manager, err := rt.authManager()
	if err != nil {
		return nil, err
	}
	ok, err := manager.LoadSavedToken(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("not authenticated; run 'silexctl auth login'")
	}
	header, err := manager.BearerHeader()
	if err != nil {
		return nil, err
	}
	return client.New(host, client.WithBearer(header), client.WithLogger(rt.logger()))
}
