package authn

import (
	"fmt"

	"github.com/skillsenselab/iam/authn/keycloak"
)

// Provider selection values recognized in configuration.
const (
	ProviderInternal = "internal"
	ProviderKeycloak = "keycloak"
)

// Config selects and configures the authentication provider. The selection
// is fixed for the process lifetime.
type Config struct {
	// Provider selects the backend: "internal" or "keycloak".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Keycloak configures the external IdP client. Required only when
	// Provider is "keycloak".
	Keycloak keycloak.Config `yaml:"keycloak" mapstructure:"keycloak"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields. The
// provider itself has no default; it must be configured explicitly so
// a missing key fails startup instead of silently picking a backend.
func (c *Config) ApplyDefaults() {
	c.Keycloak.ApplyDefaults()
}

// Validate checks the configuration. A missing or unrecognized provider
// is reported here so misconfiguration fails at startup, not on first
// request.
func (c *Config) Validate() error {
	switch c.Provider {
	case "":
		return fmt.Errorf("authentication.provider is required")
	case ProviderInternal:
		return nil
	case ProviderKeycloak:
		if err := c.Keycloak.Validate(); err != nil {
			return fmt.Errorf("authentication.keycloak: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported authentication provider: %s", c.Provider)
	}
}
