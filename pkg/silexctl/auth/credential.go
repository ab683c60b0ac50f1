package auth

import (
	"errors"
	"time"
)

// ErrNotAuthenticated is returned when a bearer header is requested but no
// valid credential is held.
var ErrNotAuthenticated = errors.New("not authenticated")

type Backend string

const (
	BackendOpenSilex Backend = "opensilex"
	BackendKeycloak  Backend = "keycloak"
)

// Credential is a single cached login, one per backend. OpenSilex credentials
// never carry a refresh token; expiry of a native token requires a full
// re-login.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	Username     string    `json:"username,omitempty"`
	Email        string    `json:"email,omitempty"`
	IssuedAt     time.Time `json:"issued_at,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Backend      Backend   `json:"backend,omitempty"`
}

// ValidAt reports whether the credential can still be used at the given
// instant. A credential exactly at its expiry is no longer valid.
func (c Credential) ValidAt(now time.Time) bool {
	return c.AccessToken != "" && now.Before(c.ExpiresAt)
}

func (c Credential) BearerHeader() string {
	return "Bearer " + c.AccessToken
}
