package authn

import (
	"fmt"

	"github.com/skillsenselab/iam/authn/keycloak"
	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/logger"
)

// New selects the configured authentication provider.
//
// Selection happens exactly once; the returned Provider is stored as an
// immutable reference for the process lifetime. A missing or unrecognized
// provider value yields a configuration error; the process must fail to
// start rather than defer the failure to the first request.
func New(cfg Config, log *logger.Logger) (Provider, error) {
	cfg.ApplyDefaults()

	switch cfg.Provider {
	case "":
		return nil, errors.Configuration("authentication.provider is required")
	case ProviderInternal:
		log.Info("Authentication provider selected", map[string]interface{}{
			"provider": ProviderInternal,
		})
		return NewInternalProvider(log), nil
	case ProviderKeycloak:
		if err := cfg.Keycloak.Validate(); err != nil {
			return nil, errors.Configuration(fmt.Sprintf("keycloak provider: %v", err))
		}
		log.Info("Authentication provider selected", map[string]interface{}{
			"provider": ProviderKeycloak,
			"realm":    cfg.Keycloak.Realm,
		})
		return &externalProvider{client: keycloak.NewClient(cfg.Keycloak, log)}, nil
	default:
		return nil, errors.Configuration(fmt.Sprintf("unsupported authentication provider: %s", cfg.Provider))
	}
}
