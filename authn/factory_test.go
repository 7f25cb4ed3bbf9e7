package authn

import (
	"testing"
	"time"

	"github.com/skillsenselab/iam/authn/keycloak"
	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/logger"
)

func TestNewSelectsInternalProvider(t *testing.T) {
	p, err := New(Config{Provider: ProviderInternal}, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := p.(*InternalProvider); !ok {
		t.Errorf("expected *InternalProvider, got %T", p)
	}
}

func TestNewRequiresExplicitProvider(t *testing.T) {
	// A missing provider must fail startup, not silently pick a backend.
	_, err := New(Config{}, logger.NewDefault("test"))
	if err == nil {
		t.Fatal("expected configuration error for missing provider")
	}
	if !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestNewSelectsKeycloakProvider(t *testing.T) {
	cfg := Config{
		Provider: ProviderKeycloak,
		Keycloak: keycloak.Config{
			ServerURL:    "https://sso.example.com",
			Realm:        "trading",
			ClientID:     "iam-service",
			ClientSecret: "s3cret",
			Timeout:      time.Second,
		},
	}
	p, err := New(cfg, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := p.(*externalProvider); !ok {
		t.Errorf("expected *externalProvider, got %T", p)
	}
}

func TestNewRejectsUnsupportedProvider(t *testing.T) {
	_, err := New(Config{Provider: "auth0"}, logger.NewDefault("test"))
	if err == nil {
		t.Fatal("expected configuration error for unsupported provider")
	}
	if !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestNewKeycloakRequiresConnectionSettings(t *testing.T) {
	_, err := New(Config{Provider: ProviderKeycloak}, logger.NewDefault("test"))
	if err == nil {
		t.Fatal("expected configuration error for incomplete keycloak settings")
	}
	if !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}
