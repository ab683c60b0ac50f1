package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type KeycloakConfig struct {
	// URL is the Keycloak base URL; all OAuth2 endpoints are derived as
	// {URL}/realms/{Realm}/protocol/openid-connect/{endpoint}.
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

func (c KeycloakConfig) oidcBase() string {
	return strings.TrimSuffix(c.URL, "/") + "/realms/" + c.Realm + "/protocol/openid-connect"
}

// KeycloakManager authenticates against a Keycloak realm via OAuth2/OIDC,
// using either the direct password grant or the authorization code flow with
// PKCE, and supports token refresh and revocation.
type KeycloakManager struct {
	cfg       KeycloakConfig
	kc        *gocloak.GoCloak
	store     TokenStore
	verifiers *verifierStore
	log       *zap.Logger
	now       func() time.Time
	cred      *Credential
}

func NewKeycloakManager(cfg KeycloakConfig, store TokenStore, opts ...Option) *KeycloakManager {
	o := newManagerOptions(opts...)
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "profile", "email"}
	}
	verifierDir := o.verifierDir
	if verifierDir == "" {
		verifierDir = defaultVerifierDir()
	}
	kc := gocloak.NewClient(strings.TrimSuffix(cfg.URL, "/"))
	kc.RestyClient().SetTimeout(o.timeout)
	return &KeycloakManager{
		cfg:       cfg,
		kc:        kc,
		store:     store,
		verifiers: &verifierStore{dir: verifierDir},
		log:       o.log,
		now:       o.now,
	}
}

func (m *KeycloakManager) oauthConfig() *oauth2.Config {
	base := m.cfg.oidcBase()
	return &oauth2.Config{
		ClientID:     m.cfg.ClientID,
		ClientSecret: m.cfg.ClientSecret,
		RedirectURL:  m.cfg.RedirectURI,
		Scopes:       m.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  base + "/auth",
			TokenURL: base + "/token",
		},
	}
}

// AuthorizationURL builds the authorization code URL with PKCE parameters.
// A cryptographically random state is generated when none is supplied; the
// code verifier is persisted keyed by state so AuthenticateCode can run in a
// later process invocation.
func (m *KeycloakManager) AuthorizationURL(state string) (string, string, error) {
	if state == "" {
		generated, err := randomToken(24)
		if err != nil {
			return "", "", err
		}
		state = generated
	}
	verifier, challenge, err := newPKCEPair()
	if err != nil {
		return "", "", err
	}
	if err := m.verifiers.put(state, verifier); err != nil {
		return "", "", err
	}
	url := m.oauthConfig().AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	m.log.Info("generated authorization URL", zap.String("state", state))
	return url, state, nil
}

// AuthenticateCode exchanges an authorization code for tokens. The exchange
// fails closed when no verifier is stored for the state, which indicates
// either CSRF or loss of the transient state; the verifier is consumed
// whether or not the exchange succeeds.
func (m *KeycloakManager) AuthenticateCode(ctx context.Context, code, state string) (bool, error) {
	verifier, ok := m.verifiers.take(state)
	if !ok {
		m.log.Error("no pending authorization for state", zap.String("state", state))
		return false, nil
	}
	token, err := m.oauthConfig().Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		m.log.Error("authorization code exchange failed", zap.Error(err))
		return false, nil
	}
	now := m.now()
	// oauth2 computes token.Expiry from the wall clock; rebuilding it from
	// the declared lifetime keeps issued/expires on the same time source.
	expiresAt := token.Expiry
	if lifetime := tokenLifetime(token); lifetime > 0 {
		expiresAt = now.Add(lifetime)
	}
	cred := Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		IssuedAt:     now,
		ExpiresAt:    expiresAt,
		Backend:      BackendKeycloak,
	}
	if cred.TokenType == "" {
		cred.TokenType = "Bearer"
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		cred.IDToken = idToken
	}
	if scope, ok := token.Extra("scope").(string); ok {
		cred.Scope = scope
	}
	m.resolveIdentity(ctx, &cred)
	if err := m.store.Save(cred); err != nil {
		return false, fmt.Errorf("failed to save credential: %w", err)
	}
	m.cred = &cred
	m.log.Info("keycloak authorization code login successful",
		zap.String("username", cred.Username))
	return true, nil
}

// AuthenticatePassword performs the direct resource-owner password grant.
// The Keycloak client must have direct access grants enabled.
func (m *KeycloakManager) AuthenticatePassword(ctx context.Context, username, password string) (bool, error) {
	options := gocloak.TokenOptions{
		ClientID:  gocloak.StringP(m.cfg.ClientID),
		GrantType: gocloak.StringP("password"),
		Username:  gocloak.StringP(username),
		Password:  gocloak.StringP(password),
		Scope:     gocloak.StringP(strings.Join(m.cfg.Scopes, " ")),
	}
	if m.cfg.ClientSecret != "" {
		options.ClientSecret = gocloak.StringP(m.cfg.ClientSecret)
	}
	token, err := m.kc.GetToken(ctx, m.cfg.Realm, options)
	if err != nil {
		m.log.Error("keycloak password authentication failed",
			zap.String("username", username), zap.Error(err))
		return false, nil
	}
	cred := m.credentialFromJWT(token)
	cred.Username = username
	m.resolveIdentity(ctx, &cred)
	if err := m.store.Save(cred); err != nil {
		return false, fmt.Errorf("failed to save credential: %w", err)
	}
	m.cred = &cred
	m.log.Info("keycloak password authentication successful",
		zap.String("username", cred.Username))
	return true, nil
}

// Refresh exchanges the stored refresh token for a new access token. It
// reports false when no refresh token is held or the server rejects the
// exchange; the caller must then fall back to a full re-login.
func (m *KeycloakManager) Refresh(ctx context.Context) (bool, error) {
	if m.cred == nil || m.cred.RefreshToken == "" {
		m.log.Debug("no refresh token available")
		return false, nil
	}
	token, err := m.kc.RefreshToken(ctx, m.cred.RefreshToken, m.cfg.ClientID, m.cfg.ClientSecret, m.cfg.Realm)
	if err != nil {
		m.log.Warn("token refresh rejected", zap.Error(err))
		return false, nil
	}
	now := m.now()
	cred := *m.cred
	cred.AccessToken = token.AccessToken
	cred.IssuedAt = now
	cred.ExpiresAt = now.Add(time.Duration(token.ExpiresIn) * time.Second)
	if token.RefreshToken != "" {
		cred.RefreshToken = token.RefreshToken
	}
	if token.IDToken != "" {
		cred.IDToken = token.IDToken
	}
	if token.Scope != "" {
		cred.Scope = token.Scope
	}
	if err := m.store.Save(cred); err != nil {
		return false, fmt.Errorf("failed to save credential: %w", err)
	}
	m.cred = &cred
	m.log.Info("token refresh successful", zap.Time("expires_at", cred.ExpiresAt))
	return true, nil
}

// LoadSavedToken picks up a cached credential. Unlike the native backend an
// expired credential is not immediately rejected: when a refresh token is
// present a refresh is attempted first.
func (m *KeycloakManager) LoadSavedToken(ctx context.Context) (bool, error) {
	cred, found, err := m.store.Load()
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if cred.ValidAt(m.now()) {
		m.cred = &cred
		m.log.Info("loaded cached keycloak token", zap.String("username", cred.Username))
		return true, nil
	}
	if cred.RefreshToken == "" {
		m.log.Debug("cached keycloak token has expired and has no refresh token")
		return false, nil
	}
	m.log.Debug("cached keycloak token has expired, attempting refresh")
	m.cred = &cred
	ok, err := m.Refresh(ctx)
	if err != nil || !ok {
		m.cred = nil
	}
	return ok, err
}

func (m *KeycloakManager) IsAuthenticated() bool {
	return m.cred != nil && m.cred.ValidAt(m.now())
}

func (m *KeycloakManager) BearerHeader() (string, error) {
	if !m.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	return m.cred.BearerHeader(), nil
}

func (m *KeycloakManager) TokenInfo() (Credential, bool) {
	if m.cred == nil {
		return Credential{}, false
	}
	return *m.cred, true
}

// Logout clears local state and, when requested, revokes the refresh token.
// Revocation is best effort: logout always succeeds locally even when the
// server is unreachable.
func (m *KeycloakManager) Logout(ctx context.Context, revoke bool) error {
	if revoke && m.cred != nil && m.cred.RefreshToken != "" {
		if err := m.kc.RevokeToken(ctx, m.cfg.Realm, m.cfg.ClientID, m.cfg.ClientSecret, m.cred.RefreshToken); err != nil {
			m.log.Warn("failed to revoke refresh token", zap.Error(err))
		}
	}
	m.cred = nil
	return m.store.Clear()
}

func (m *KeycloakManager) credentialFromJWT(token *gocloak.JWT) Credential {
	now := m.now()
	cred := Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      token.IDToken,
		TokenType:    token.TokenType,
		Scope:        token.Scope,
		IssuedAt:     now,
		ExpiresAt:    now.Add(time.Duration(token.ExpiresIn) * time.Second),
		Backend:      BackendKeycloak,
	}
	if cred.TokenType == "" {
		cred.TokenType = "Bearer"
	}
	return cred
}

// resolveIdentity fills username and email from the userinfo endpoint,
// falling back to unverified ID token claims when the lookup fails.
func (m *KeycloakManager) resolveIdentity(ctx context.Context, cred *Credential) {
	info, err := m.kc.GetUserInfo(ctx, cred.AccessToken, m.cfg.Realm)
	if err == nil {
		if info.PreferredUsername != nil && *info.PreferredUsername != "" {
			cred.Username = *info.PreferredUsername
		}
		if info.Email != nil && *info.Email != "" {
			cred.Email = *info.Email
		}
		return
	}
	m.log.Warn("userinfo lookup failed, falling back to token claims", zap.Error(err))
	claims := claimsFromToken(cred.IDToken)
	if claims == nil {
		claims = claimsFromToken(cred.AccessToken)
	}
	if claims == nil {
		return
	}
	if username, ok := claims["preferred_username"].(string); ok && username != "" {
		cred.Username = username
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		cred.Email = email
	}
}

// tokenLifetime reads the expires_in the token endpoint declared; zero when
// the field is absent or malformed.
func tokenLifetime(token *oauth2.Token) time.Duration {
	switch v := token.Extra("expires_in").(type) {
	case float64:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case json.Number:
		if seconds, err := v.Int64(); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	case string:
		if seconds, err := strconv.ParseInt(v, 10, 64); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

func claimsFromToken(token string) jwt.MapClaims {
	if token == "" {
		return nil
	}
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
