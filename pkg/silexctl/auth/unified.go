package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Method selects which backend the UnifiedManager uses.
type Method string

const (
	MethodOpenSilex Method = "opensilex"
	MethodKeycloak  Method = "keycloak"
	MethodAuto      Method = "auto"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodOpenSilex, MethodKeycloak, MethodAuto:
		return Method(s), nil
	case "":
		return MethodAuto, nil
	default:
		return "", fmt.Errorf("unsupported auth method: %s", s)
	}
}

type UnifiedConfig struct {
	Method    Method
	OpenSilex OpenSilexConfig
	Keycloak  KeycloakConfig
	// One store per backend; at most one credential is cached per slot.
	OpenSilexStore TokenStore
	KeycloakStore  TokenStore
}

// UnifiedManager hides backend selection behind a single interface. Backends
// are constructed lazily on first use; the first backend to authenticate
// becomes the active one for the rest of the session.
type UnifiedManager struct {
	cfg  UnifiedConfig
	opts []Option
	log  *zap.Logger

	opensilex *OpenSilexManager
	keycloak  *KeycloakManager
	active    Method
}

func NewUnifiedManager(cfg UnifiedConfig, opts ...Option) *UnifiedManager {
	if cfg.Method == "" {
		cfg.Method = MethodAuto
	}
	if cfg.OpenSilexStore == nil {
		cfg.OpenSilexStore = &FileStore{Path: DefaultStorePath(BackendOpenSilex)}
	}
	if cfg.KeycloakStore == nil {
		cfg.KeycloakStore = &FileStore{Path: DefaultStorePath(BackendKeycloak)}
	}
	o := newManagerOptions(opts...)
	return &UnifiedManager{cfg: cfg, opts: opts, log: o.log}
}

func (m *UnifiedManager) openSilexManager() *OpenSilexManager {
	if m.opensilex == nil {
		m.opensilex = NewOpenSilexManager(m.cfg.OpenSilex, m.cfg.OpenSilexStore, m.opts...)
	}
	return m.opensilex
}

func (m *UnifiedManager) keycloakManager() *KeycloakManager {
	if m.keycloak == nil {
		m.keycloak = NewKeycloakManager(m.cfg.Keycloak, m.cfg.KeycloakStore, m.opts...)
	}
	return m.keycloak
}

func (m *UnifiedManager) keycloakConfigured() bool {
	return m.cfg.Keycloak.URL != ""
}

// Authenticate dispatches on the configured method. In auto mode cached
// tokens are tried first, then Keycloak password authentication when
// configured, then the native OpenSilex login.
func (m *UnifiedManager) Authenticate(ctx context.Context, username, password string) (bool, error) {
	switch m.cfg.Method {
	case MethodOpenSilex:
		return m.authenticateOpenSilex(ctx, username, password)
	case MethodKeycloak:
		return m.authenticateKeycloak(ctx, username, password)
	case MethodAuto:
		if ok, err := m.LoadSavedToken(ctx); err != nil || ok {
			return ok, err
		}
		if m.keycloakConfigured() {
			if ok, err := m.authenticateKeycloak(ctx, username, password); err != nil || ok {
				return ok, err
			}
			m.log.Info("keycloak authentication failed, falling back to opensilex")
		}
		return m.authenticateOpenSilex(ctx, username, password)
	default:
		return false, fmt.Errorf("unsupported auth method: %s", m.cfg.Method)
	}
}

func (m *UnifiedManager) authenticateOpenSilex(ctx context.Context, username, password string) (bool, error) {
	ok, err := m.openSilexManager().Authenticate(ctx, username, password)
	if ok {
		m.active = MethodOpenSilex
	}
	return ok, err
}

func (m *UnifiedManager) authenticateKeycloak(ctx context.Context, username, password string) (bool, error) {
	ok, err := m.keycloakManager().AuthenticatePassword(ctx, username, password)
	if ok {
		m.active = MethodKeycloak
	}
	return ok, err
}

// AuthorizationURL starts a browser-based Keycloak login. The state that
// binds the eventual callback to this request is returned alongside the URL.
func (m *UnifiedManager) AuthorizationURL() (string, string, error) {
	if !m.keycloakConfigured() {
		return "", "", errors.New("keycloak is not configured")
	}
	return m.keycloakManager().AuthorizationURL("")
}

// AuthenticateCode finishes a browser-based Keycloak login from the code and
// state delivered to the redirect URI.
func (m *UnifiedManager) AuthenticateCode(ctx context.Context, code, state string) (bool, error) {
	if !m.keycloakConfigured() {
		return false, errors.New("keycloak is not configured")
	}
	ok, err := m.keycloakManager().AuthenticateCode(ctx, code, state)
	if ok {
		m.active = MethodKeycloak
	}
	return ok, err
}

// LoadSavedToken tries the cached credentials of both backends. Keycloak is
// checked first when configured, a deliberate preference for the richer
// protocol rather than a correctness requirement.
func (m *UnifiedManager) LoadSavedToken(ctx context.Context) (bool, error) {
	if m.keycloakConfigured() {
		ok, err := m.keycloakManager().LoadSavedToken(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			m.active = MethodKeycloak
			return true, nil
		}
	}
	ok, err := m.openSilexManager().LoadSavedToken(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		m.active = MethodOpenSilex
	}
	return ok, nil
}

// ActiveMethod reports which backend produced the current session, or ""
// when unauthenticated.
func (m *UnifiedManager) ActiveMethod() Method {
	return m.active
}

func (m *UnifiedManager) IsAuthenticated() bool {
	switch m.active {
	case MethodOpenSilex:
		return m.openSilexManager().IsAuthenticated()
	case MethodKeycloak:
		return m.keycloakManager().IsAuthenticated()
	default:
		return false
	}
}

func (m *UnifiedManager) BearerHeader() (string, error) {
	switch m.active {
	case MethodOpenSilex:
		return m.openSilexManager().BearerHeader()
	case MethodKeycloak:
		return m.keycloakManager().BearerHeader()
	default:
		return "", ErrNotAuthenticated
	}
}

func (m *UnifiedManager) TokenInfo() (Credential, bool) {
	switch m.active {
	case MethodOpenSilex:
		return m.openSilexManager().TokenInfo()
	case MethodKeycloak:
		return m.keycloakManager().TokenInfo()
	default:
		return Credential{}, false
	}
}

// Refresh delegates to the active backend. False from the native backend is
// not an error; it means the caller must re-authenticate.
func (m *UnifiedManager) Refresh(ctx context.Context) (bool, error) {
	switch m.active {
	case MethodOpenSilex:
		return m.openSilexManager().Refresh(ctx)
	case MethodKeycloak:
		return m.keycloakManager().Refresh(ctx)
	default:
		return false, nil
	}
}

// Logout logs out of both backends unconditionally and clears the active
// backend pointer. It is idempotent on a backend that was never used.
func (m *UnifiedManager) Logout(ctx context.Context, revoke bool) error {
	var errs []error
	if m.keycloakConfigured() || m.keycloak != nil {
		if err := m.keycloakManager().Logout(ctx, revoke); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.openSilexManager().Logout(ctx); err != nil {
		errs = append(errs, err)
	}
	m.active = ""
	return errors.Join(errs...)
}
