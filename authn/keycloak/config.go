package keycloak

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the external identity provider connection settings.
type Config struct {
	// ServerURL is the Keycloak base URL, e.g. "https://sso.example.com".
	ServerURL string `yaml:"server_url" mapstructure:"server-url"`

	// Realm is the Keycloak realm containing this service's clients and users.
	Realm string `yaml:"realm" mapstructure:"realm"`

	// ClientID is the OAuth2 client identifier registered with the realm.
	ClientID string `yaml:"client_id" mapstructure:"client-id"`

	// ClientSecret is the OAuth2 client secret.
	ClientSecret string `yaml:"client_secret" mapstructure:"client-secret"`

	// Timeout bounds every round-trip to the IdP (default: 10s). A timeout
	// is surfaced the same way as any other network failure. Authentication
	// calls are never retried: retrying amplifies account lockout and can
	// replay sensitive operations.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Validate checks that required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server-url is required")
	}
	if _, err := url.Parse(c.ServerURL); err != nil {
		return fmt.Errorf("invalid server-url %q: %w", c.ServerURL, err)
	}
	if c.Realm == "" {
		return fmt.Errorf("realm is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client-id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("client-secret is required")
	}
	return nil
}

// tokenURL returns the realm's OpenID Connect token endpoint.
func (c *Config) tokenURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token",
		strings.TrimRight(c.ServerURL, "/"), c.Realm)
}

// adminUsersURL returns the realm's admin user-creation endpoint.
func (c *Config) adminUsersURL() string {
	return fmt.Sprintf("%s/admin/realms/%s/users",
		strings.TrimRight(c.ServerURL, "/"), c.Realm)
}
