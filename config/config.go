package config

import (
	"fmt"

	"github.com/skillsenselab/iam/authn"
	"github.com/skillsenselab/iam/authn/keycloak"
	"github.com/skillsenselab/iam/logger"
	"github.com/skillsenselab/iam/observability"
	"github.com/skillsenselab/iam/server"
	"github.com/skillsenselab/iam/snowflake"
	"github.com/skillsenselab/iam/store"
	"github.com/skillsenselab/iam/vault"
)

// Config is the full configuration of the identity service.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging        logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server         server.Config        `yaml:"server" mapstructure:"server"`
	Database       store.Config         `yaml:"database" mapstructure:"database"`
	Snowflake      snowflake.Config     `yaml:"snowflake" mapstructure:"snowflake"`
	Vault          vault.Config         `yaml:"vault" mapstructure:"vault"`
	Authentication authn.Config         `yaml:"authentication" mapstructure:"authentication"`
	Observability  observability.Config `yaml:"observability" mapstructure:"observability"`

	// Keycloak at the top level mirrors the flat layout used by existing
	// deployments; when set it feeds Authentication.Keycloak.
	Keycloak keycloak.Config `yaml:"keycloak" mapstructure:"keycloak"`
}

// Load reads the configuration for the named service.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Keycloak.ServerURL != "" && c.Authentication.Keycloak.ServerURL == "" {
		c.Authentication.Keycloak = c.Keycloak
	}

	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Vault.ApplyDefaults()
	c.Authentication.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates every section. Any failure here must abort startup.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("config.database: %w", err)
	}
	if err := c.Snowflake.Validate(); err != nil {
		return fmt.Errorf("config.snowflake: %w", err)
	}
	if err := c.Vault.Validate(); err != nil {
		return fmt.Errorf("config.vault: %w", err)
	}
	if err := c.Authentication.Validate(); err != nil {
		return fmt.Errorf("config.authentication: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}
