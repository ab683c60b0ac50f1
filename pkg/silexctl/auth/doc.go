// Package auth implements authentication against OpenSilex deployments,
// supporting the native /security/authenticate endpoint and Keycloak
// OAuth2/OIDC (password grant, authorization code with PKCE, refresh) with
// single-slot token caching via file or keychain storage. The UnifiedManager
// composes both backends behind one interface with automatic backend
// selection.
package auth
