package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opensilex/silexctl/pkg/silexctl/output"
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with the platform",
	}
	cmd.AddCommand(
		newAuthLoginCommand(),
		newAuthStatusCommand(),
		newAuthLogoutCommand(),
		newAuthRefreshCommand(),
		newAuthURLCommand(),
		newAuthExchangeCommand(),
	)
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with username and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.authManager()
			if err != nil {
				return err
			}
			if username == "" {
				username, err = promptLine(rt, "Username: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = promptPassword(rt, "Password: ")
				if err != nil {
					return err
				}
			}
			ok, err := manager.Authenticate(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("authentication failed")
			}
			cred, _ := manager.TokenInfo()
			_, _ = fmt.Fprintf(rt.Writer(), "Authenticated via %s. Token expires at %s\n",
				manager.ActiveMethod(), cred.ExpiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account identifier")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")

	return cmd
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.authManager()
			if err != nil {
				return err
			}
			ok, err := manager.LoadSavedToken(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(rt.Writer(), "Not authenticated")
				return nil
			}
			cred, _ := manager.TokenInfo()
			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				backend := cred.Backend
				output.WriteTokenStatus(rt.Writer(), backend, cred)
				return nil
			}
			// Tokens stay out of the structured output; it is meant for
			// status checks, not credential extraction.
			cred.AccessToken = ""
			cred.RefreshToken = ""
			cred.IDToken = ""
			return output.WriteObject(rt.Writer(), format, cred)
		},
	}
}

func newAuthLogoutCommand() *cobra.Command {
	var noRevoke bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove cached credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.authManager()
			if err != nil {
				return err
			}
			// Load first so server-side revocation has a token to revoke.
			if _, err := manager.LoadSavedToken(cmd.Context()); err != nil {
				return err
			}
			if err := manager.Logout(cmd.Context(), !noRevoke); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), "Logged out")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRevoke, "no-revoke", false, "Skip server-side token revocation")

	return cmd
}

func newAuthRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the cached token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.authManager()
			if err != nil {
				return err
			}
			if _, err := manager.LoadSavedToken(cmd.Context()); err != nil {
				return err
			}
			ok, err := manager.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("token could not be refreshed; run 'silexctl auth login'")
			}
			cred, _ := manager.TokenInfo()
			_, _ = fmt.Fprintf(rt.Writer(), "Token refreshed. Expires at %s\n", cred.ExpiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
}

func newAuthURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "url",
		Short: "Print a Keycloak authorization URL for browser login",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.authManager()
			if err != nil {
				return err
			}
			url, state, err := manager.AuthorizationURL()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), url)
			_, _ = fmt.Fprintf(rt.Writer(), "state: %s\n", state)
			return nil
		},
	}
}

func newAuthExchangeCommand() *cobra.Command {
	var code, state string

	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange an authorization code from a browser login",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.authManager()
			if err != nil {
				return err
			}
			ok, err := manager.AuthenticateCode(cmd.Context(), code, state)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("code exchange failed")
			}
			cred, _ := manager.TokenInfo()
			_, _ = fmt.Fprintf(rt.Writer(), "Authenticated via keycloak. Token expires at %s\n",
				cred.ExpiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the redirect")
	cmd.Flags().StringVar(&state, "state", "", "State printed by 'silexctl auth url'")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("state")

	return cmd
}

func promptLine(rt *runtimeState, prompt string) (string, error) {
	if rt.nonInteractive {
		return "", errors.New("input required but running non-interactive")
	}
	_, _ = fmt.Fprint(rt.Writer(), prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(rt *runtimeState, prompt string) (string, error) {
	if rt.nonInteractive {
		return "", errors.New("input required but running non-interactive")
	}
	_, _ = fmt.Fprint(rt.Writer(), prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(rt.Writer())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
