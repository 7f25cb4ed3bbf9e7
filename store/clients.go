package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Clients is the machine-client repository.
type Clients struct {
	db *gorm.DB
}

// Create inserts a new client.
func (r *Clients) Create(ctx context.Context, client *Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// Save persists changes to an existing client.
func (r *Clients) Save(ctx context.Context, client *Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// ByClientID returns the client with the given public client ID, or
// (nil, nil) if absent.
func (r *Clients) ByClientID(ctx context.Context, clientID string) (*Client, error) {
	var client Client
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// All returns every registered client.
func (r *Clients) All(ctx context.Context) ([]Client, error) {
	var clients []Client
	err := r.db.WithContext(ctx).Order("created_at").Find(&clients).Error
	return clients, err
}
