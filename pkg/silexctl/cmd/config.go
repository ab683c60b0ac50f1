package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opensilex/silexctl/pkg/silexctl/config"
	"github.com/opensilex/silexctl/pkg/silexctl/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage silexctl configuration",
	}
	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigViewCommand(),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var host, keycloakURL, realm, clientID, redirectURI, method string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			cfg := config.DefaultConfig()
			cfg.OpenSilex.Host = host
			cfg.Keycloak.URL = keycloakURL
			cfg.Keycloak.Realm = realm
			cfg.Keycloak.ClientID = clientID
			cfg.Keycloak.RedirectURI = redirectURI
			if method != "" {
				cfg.AuthMethod = method
			}
			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Config written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "OpenSilex server URL")
	cmd.Flags().StringVar(&keycloakURL, "keycloak-url", "", "Keycloak base URL")
	cmd.Flags().StringVar(&realm, "realm", "", "Keycloak realm")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Keycloak client ID")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "Redirect URI for browser login")
	cmd.Flags().StringVar(&method, "auth-method", "", "Auth method: opensilex, keycloak, auto")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if rt.cfg == nil {
				return fmt.Errorf("no config loaded from %s", rt.configPath)
			}
			// Secrets never leave the file they were configured in.
			shown := *rt.cfg
			if shown.Keycloak.ClientSecret != "" {
				shown.Keycloak.ClientSecret = "***"
			}
			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				format = output.FormatYAML
			}
			return output.WriteObject(rt.Writer(), format, shown)
		},
	}
}
