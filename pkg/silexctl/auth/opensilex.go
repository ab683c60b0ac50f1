package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OpenSilex servers do not declare a token lifetime; their JWTs are assumed
// to live one hour.
const defaultOpenSilexTokenLifetime = time.Hour

type OpenSilexConfig struct {
	// Host is the server base URL without the /rest suffix.
	Host string
}

// OpenSilexManager authenticates against the native OpenSilex
// /security/authenticate endpoint. Native tokens cannot be refreshed; the
// only recovery from expiry is a new login.
type OpenSilexManager struct {
	host  string
	rest  *resty.Client
	store TokenStore
	log   *zap.Logger
	now   func() time.Time
	cred  *Credential
}

func NewOpenSilexManager(cfg OpenSilexConfig, store TokenStore, opts ...Option) *OpenSilexManager {
	o := newManagerOptions(opts...)
	host := strings.TrimSuffix(cfg.Host, "/")
	rest := resty.New().
		SetBaseURL(host).
		SetTimeout(o.timeout).
		SetHeader("Accept", "application/json")
	return &OpenSilexManager{
		host:  host,
		rest:  rest,
		store: store,
		log:   o.log,
		now:   o.now,
	}
}

// Authenticate performs the native login. The bool is the authentication
// outcome; bad credentials, unreachable servers, and unrecognized response
// envelopes all come back as false with a logged cause. The error is non-nil
// only when the credential could not be persisted.
func (m *OpenSilexManager) Authenticate(ctx context.Context, username, password string) (bool, error) {
	resp, err := m.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"identifier": username, "password": password}).
		Post("/rest/security/authenticate")
	if err != nil {
		m.log.Error("opensilex authentication request failed",
			zap.String("host", m.host), zap.Error(err))
		return false, nil
	}
	if resp.StatusCode() != http.StatusOK {
		m.log.Error("opensilex authentication rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", strings.TrimSpace(string(resp.Body()))))
		return false, nil
	}
	token, lifetime, err := extractToken(resp.Body())
	if err != nil {
		m.log.Error("opensilex authenticate response not understood", zap.Error(err))
		return false, nil
	}
	if lifetime <= 0 {
		lifetime = defaultOpenSilexTokenLifetime
	}
	now := m.now()
	cred := Credential{
		AccessToken: token,
		TokenType:   "Bearer",
		Username:    username,
		IssuedAt:    now,
		ExpiresAt:   now.Add(lifetime),
		Backend:     BackendOpenSilex,
	}
	if err := m.store.Save(cred); err != nil {
		return false, fmt.Errorf("failed to save credential: %w", err)
	}
	m.cred = &cred
	m.log.Info("opensilex authentication successful", zap.String("username", username))
	return true, nil
}

// LoadSavedToken picks up a previously cached credential. An expired
// credential is reported as false without any refresh attempt since native
// tokens are not refreshable.
func (m *OpenSilexManager) LoadSavedToken(_ context.Context) (bool, error) {
	cred, found, err := m.store.Load()
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if !cred.ValidAt(m.now()) {
		m.log.Debug("cached opensilex token has expired",
			zap.Time("expires_at", cred.ExpiresAt))
		return false, nil
	}
	m.cred = &cred
	m.log.Info("loaded cached opensilex token", zap.String("username", cred.Username))
	return true, nil
}

// Refresh always reports false: the native backend has no refresh protocol.
func (m *OpenSilexManager) Refresh(_ context.Context) (bool, error) {
	return false, nil
}

func (m *OpenSilexManager) IsAuthenticated() bool {
	return m.cred != nil && m.cred.ValidAt(m.now())
}

func (m *OpenSilexManager) BearerHeader() (string, error) {
	if !m.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	return m.cred.BearerHeader(), nil
}

// TokenInfo returns a copy of the held credential for status display.
func (m *OpenSilexManager) TokenInfo() (Credential, bool) {
	if m.cred == nil {
		return Credential{}, false
	}
	return *m.cred, true
}

// Logout drops the in-memory credential and clears the store. Calling it
// while logged out is a no-op.
func (m *OpenSilexManager) Logout(_ context.Context) error {
	m.cred = nil
	return m.store.Clear()
}
