// Package keycloak implements the OAuth2 token exchange and administrative
// user registration against a Keycloak-compatible identity provider.
//
// All three grant flows target the realm's single token endpoint with
// form-url-encoded bodies. Upstream failure detail (status code, response
// body) is logged locally and never propagated to callers, so no IdP
// internals can leak to end users.
package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/logger"
)

// TokenSet is the subset of the IdP token response this service exposes.
type TokenSet struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
}

// User carries the fields for administrative user registration.
type User struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Client performs token exchanges and admin calls against the IdP.
// Calls are synchronous round-trips bounded by the configured timeout
// and are never retried.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Keycloak client. Config must already be validated.
func NewClient(cfg Config, log *logger.Logger) *Client {
	cfg.ApplyDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.WithComponent("keycloak"),
	}
}

// Authenticate performs the OAuth2 password grant.
// Any upstream failure surfaces as a generic unauthorized outcome.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)

	tokens, err := c.exchange(ctx, form)
	if err != nil {
		c.log.Error("Password grant failed", logger.ErrorFields("authenticate", err))
		return nil, errors.Unauthorized("Invalid username or password.")
	}
	return tokens, nil
}

// Refresh performs the OAuth2 refresh-token grant.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	tokens, err := c.exchange(ctx, form)
	if err != nil {
		c.log.Error("Refresh grant failed", logger.ErrorFields("refresh", err))
		return nil, errors.Unauthorized("Invalid or expired refresh token.")
	}
	return tokens, nil
}

// ClientCredentialsToken performs the OAuth2 client-credentials grant and
// returns the access token. Used for backend calls to the IdP admin API.
func (c *Client) ClientCredentialsToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "client_credentials")

	tokens, err := c.exchange(ctx, form)
	if err != nil {
		c.log.Error("Client credentials grant failed", logger.ErrorFields("client_credentials", err))
		return "", errors.BadRequest("Failed to retrieve access token.")
	}
	return tokens.AccessToken, nil
}

// RegisterUser creates a user through the IdP admin API, authorizing with
// a freshly obtained client-credentials token. Success is HTTP 201 exactly;
// every other status or transport error reports false, never an error.
func (c *Client) RegisterUser(ctx context.Context, user User) bool {
	accessToken, err := c.ClientCredentialsToken(ctx)
	if err != nil {
		return false
	}

	body := map[string]interface{}{
		"username":  user.Username,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"enabled":   true,
		"credentials": []map[string]interface{}{{
			"type":      "password",
			"value":     user.Password,
			"temporary": false,
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		c.log.Error("Failed to encode user registration payload", logger.ErrorFields("register_user", err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.adminUsersURL(), bytes.NewReader(payload))
	if err != nil {
		c.log.Error("Failed to build user registration request", logger.ErrorFields("register_user", err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Network error while registering user", logger.ErrorFields("register_user", err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Error("User registration rejected by identity provider", map[string]interface{}{
			"operation": "register_user",
			"status":    resp.StatusCode,
			"body":      string(respBody),
		})
		return false
	}
	return true
}

// exchange posts the form to the token endpoint and decodes the five
// token fields from a 200 response. Non-200 responses, transport errors,
// and missing bodies all return an error carrying upstream detail for
// local logging only.
func (c *Client) exchange(ctx context.Context, form url.Values) (*TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Full upstream detail stays in the local log; the returned error
		// carries none of it.
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Error("Token endpoint returned non-200", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(respBody),
			"grant":  form.Get("grant_type"),
		})
		return nil, errors.UpstreamUnavailable("token_exchange")
	}

	var tokens TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, errors.UpstreamUnavailable("token_exchange").WithCause(err)
	}
	if tokens.AccessToken == "" {
		return nil, errors.UpstreamUnavailable("token_exchange").
			WithDetail("reason", "response missing access_token")
	}
	return &tokens, nil
}
