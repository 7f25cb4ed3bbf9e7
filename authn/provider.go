// Package authn unifies authentication across pluggable token providers.
//
// A Provider is selected once at startup from configuration, either the
// embedded internal authority or an external Keycloak-compatible IdP,
// and never re-selected at runtime. Token lifecycle (validity windows,
// revocation) is owned by the provider, not by this service.
package authn

import "context"

// TokenBundle is the uniform result of an authentication or refresh
// exchange. It is an ephemeral value object and is never persisted.
type TokenBundle struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
}

// NewUser carries the fields needed to register a user with a provider.
type NewUser struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Provider is the capability set every authentication backend implements.
type Provider interface {
	// Authenticate exchanges a username and password for a token bundle.
	Authenticate(ctx context.Context, username, password string) (*TokenBundle, error)

	// Refresh exchanges a refresh token for a new token bundle.
	Refresh(ctx context.Context, refreshToken string) (*TokenBundle, error)

	// ClientCredentialsToken obtains a service-to-service access token
	// using the configured client credentials.
	ClientCredentialsToken(ctx context.Context) (string, error)

	// RegisterUser creates a user with the provider. It reports success
	// or failure and never returns an error to the caller; failure detail
	// is logged by the implementation.
	RegisterUser(ctx context.Context, user NewUser) bool
}
