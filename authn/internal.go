package authn

import (
	"context"

	"github.com/skillsenselab/iam/logger"
)

// InternalProvider is a same-process, no-network placeholder backend for
// deployments without an external IdP.
//
// Known limitation: it returns static placeholder tokens and does NOT
// verify credentials against stored hashes. Callers relying on it get no
// real authentication. Making it production-grade is an explicit
// non-goal; use the keycloak provider for real deployments.
type InternalProvider struct {
	log *logger.Logger
}

// NewInternalProvider creates the internal authority stub.
func NewInternalProvider(log *logger.Logger) *InternalProvider {
	return &InternalProvider{log: log.WithComponent("authn.internal")}
}

var _ Provider = (*InternalProvider)(nil)

// Authenticate returns a static placeholder token bundle regardless of
// the supplied credentials.
func (p *InternalProvider) Authenticate(_ context.Context, username, _ string) (*TokenBundle, error) {
	p.log.Debug("Internal authenticate", map[string]interface{}{
		"username": username,
	})
	return &TokenBundle{
		AccessToken:  "internalAccessToken",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		RefreshToken: "internalRefreshToken",
	}, nil
}

// Refresh returns a static placeholder token bundle.
func (p *InternalProvider) Refresh(_ context.Context, _ string) (*TokenBundle, error) {
	return &TokenBundle{
		AccessToken: "newInternalAccessToken",
		TokenType:   "Bearer",
		ExpiresIn:   3600,
	}, nil
}

// ClientCredentialsToken returns a static placeholder token.
func (p *InternalProvider) ClientCredentialsToken(_ context.Context) (string, error) {
	return "internalClientCredentialsToken", nil
}

// RegisterUser reports success unconditionally; the stub has no user store.
func (p *InternalProvider) RegisterUser(_ context.Context, user NewUser) bool {
	p.log.Debug("Internal register user", map[string]interface{}{
		"username": user.Username,
	})
	return true
}
