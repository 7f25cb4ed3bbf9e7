package authn

import (
	"context"

	"github.com/skillsenselab/iam/authn/keycloak"
)

// externalProvider adapts the Keycloak client to the Provider contract.
type externalProvider struct {
	client *keycloak.Client
}

var _ Provider = (*externalProvider)(nil)

func (p *externalProvider) Authenticate(ctx context.Context, username, password string) (*TokenBundle, error) {
	tokens, err := p.client.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return bundleFrom(tokens), nil
}

func (p *externalProvider) Refresh(ctx context.Context, refreshToken string) (*TokenBundle, error) {
	tokens, err := p.client.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return bundleFrom(tokens), nil
}

func (p *externalProvider) ClientCredentialsToken(ctx context.Context) (string, error) {
	return p.client.ClientCredentialsToken(ctx)
}

func (p *externalProvider) RegisterUser(ctx context.Context, user NewUser) bool {
	return p.client.RegisterUser(ctx, keycloak.User{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Password:  user.Password,
	})
}

func bundleFrom(t *keycloak.TokenSet) *TokenBundle {
	return &TokenBundle{
		AccessToken:      t.AccessToken,
		TokenType:        t.TokenType,
		ExpiresIn:        t.ExpiresIn,
		RefreshToken:     t.RefreshToken,
		RefreshExpiresIn: t.RefreshExpiresIn,
	}
}
