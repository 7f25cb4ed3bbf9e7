package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/logger"
	"github.com/skillsenselab/iam/snowflake"
	"github.com/skillsenselab/iam/store"
	"github.com/skillsenselab/iam/validation"
	"github.com/skillsenselab/iam/vault"
)

// RegisterClientInput carries the fields of a client registration.
type RegisterClientInput struct {
	Name string `json:"name" validate:"required,min=3,max=128"`
}

// RegisteredClient pairs a freshly created or rotated client with its
// raw secret. The raw secret exists only in this value; it is never
// persisted and cannot be recovered later.
type RegisteredClient struct {
	Client *store.Client `json:"client"`
	Secret string        `json:"secret"`
}

// Clients implements machine-client lifecycle operations.
type Clients struct {
	clients *store.Clients
	ids     *snowflake.Generator
	vault   *vault.Vault
	log     *logger.Logger
}

// NewClients creates the client service.
func NewClients(s *store.Store, ids *snowflake.Generator, v *vault.Vault, log *logger.Logger) *Clients {
	return &Clients{
		clients: s.Clients(),
		ids:     ids,
		vault:   v,
		log:     log.WithComponent("clients"),
	}
}

// Register creates a new machine client. The public client ID is a
// random UUID and the secret is generated server-side; only the hash
// of the secret is stored.
func (s *Clients) Register(ctx context.Context, in RegisterClientInput) (*RegisteredClient, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	id, err := s.ids.Next()
	if err != nil {
		return nil, err
	}
	secret, err := s.vault.GenerateSecret()
	if err != nil {
		return nil, errors.Internal(err)
	}
	hash, err := s.vault.Hash(secret)
	if err != nil {
		return nil, err
	}

	client := &store.Client{
		ID:         id,
		Name:       in.Name,
		ClientID:   uuid.NewString(),
		SecretHash: hash,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, errors.DatabaseError(err)
	}

	s.log.Info("Client registered", map[string]interface{}{
		"client_id": client.ClientID,
		"name":      client.Name,
	})
	return &RegisteredClient{Client: client, Secret: secret}, nil
}

// ValidateCredentials reports whether the client ID and secret form a
// valid, enabled credential pair. An unknown client ID is an ordinary
// false, not an error; callers on the authentication path must not be
// able to distinguish a wrong secret from a missing client.
func (s *Clients) ValidateCredentials(ctx context.Context, clientID, secret string) (bool, error) {
	client, err := s.clients.ByClientID(ctx, clientID)
	if err != nil {
		return false, errors.DatabaseError(err)
	}
	if client == nil || client.Disabled {
		return false, nil
	}
	return s.vault.Verify(secret, client.SecretHash), nil
}

// Get returns the client with the given public client ID.
func (s *Clients) Get(ctx context.Context, clientID string) (*store.Client, error) {
	client, err := s.clients.ByClientID(ctx, clientID)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if client == nil {
		return nil, errors.NotFound("client", clientID)
	}
	return client, nil
}

// List returns every registered client.
func (s *Clients) List(ctx context.Context) ([]store.Client, error) {
	clients, err := s.clients.All(ctx)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	return clients, nil
}

// Update changes the display name of a client.
func (s *Clients) Update(ctx context.Context, clientID string, in RegisterClientInput) (*store.Client, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	client, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	client.Name = in.Name
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, errors.DatabaseError(err)
	}
	return client, nil
}

// SetDisabled enables or disables a client. A disabled client fails
// credential validation immediately.
func (s *Clients) SetDisabled(ctx context.Context, clientID string, disabled bool) (*store.Client, error) {
	client, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	client.Disabled = disabled
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, errors.DatabaseError(err)
	}
	s.log.Info("Client disabled state changed", map[string]interface{}{
		"client_id": clientID,
		"disabled":  strconv.FormatBool(disabled),
	})
	return client, nil
}

// RegenerateSecret rotates the client's secret. The previous secret
// stops validating as soon as the new hash is persisted.
func (s *Clients) RegenerateSecret(ctx context.Context, clientID string) (*RegisteredClient, error) {
	client, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	secret, err := s.vault.GenerateSecret()
	if err != nil {
		return nil, errors.Internal(err)
	}
	hash, err := s.vault.Hash(secret)
	if err != nil {
		return nil, err
	}

	client.SecretHash = hash
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, errors.DatabaseError(err)
	}

	s.log.Info("Client secret regenerated", map[string]interface{}{
		"client_id": clientID,
	})
	return &RegisteredClient{Client: client, Secret: secret}, nil
}
