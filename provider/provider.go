// Package provider manages identity-provider configuration records. These are
// plain key/config rows consumed by the surrounding platform; gatekit never
// talks to the providers themselves.
package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/getgatekit/gatekit/domain"
)

// IdentityProvider is a configured external identity provider.
type IdentityProvider struct {
	ID        uint        `json:"id"`
	Key       string      `json:"key"` // unique short name, e.g. "keycloak"
	Name      string      `json:"name"`
	Type      string      `json:"type"` // e.g. "oidc", "saml", "ldap"
	Config    domain.JSON `json:"config"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Update carries the mutable provider fields. Nil pointers leave the stored
// value untouched.
type Update struct {
	Name     *string      `json:"name,omitempty"`
	Type     *string      `json:"type,omitempty"`
	Config   *domain.JSON `json:"config,omitempty"`
	IsActive *bool        `json:"is_active,omitempty"`
}

// Storage defines persistence for identity providers.
type Storage interface {
	CreateProvider(ctx context.Context, p *IdentityProvider) (*IdentityProvider, error)
	GetProvider(ctx context.Context, id uint) (*IdentityProvider, error)
	GetProviderByKey(ctx context.Context, key string) (*IdentityProvider, error)
	ListProviders(ctx context.Context) ([]IdentityProvider, error)
	UpdateProvider(ctx context.Context, p *IdentityProvider) (*IdentityProvider, error)
	DeleteProvider(ctx context.Context, id uint) error
}

// Manager exposes identity-provider operations over a Storage backend.
type Manager struct {
	storage Storage
	log     *zap.Logger
}

// NewManager creates a new provider Manager.
func NewManager(storage Storage, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{storage: storage, log: log}
}

// Create stores a new provider. Key, Name and Type are required; new
// providers are active unless stated otherwise.
func (m *Manager) Create(ctx context.Context, p *IdentityProvider) (*IdentityProvider, error) {
	if p == nil || p.Key == "" || p.Name == "" || p.Type == "" {
		return nil, fmt.Errorf("%w: key, name and type must not be empty", domain.ErrValidation)
	}
	if len(p.Config) == 0 {
		p.Config = domain.JSON("{}")
	}

	created, err := m.storage.CreateProvider(ctx, p)
	if err != nil {
		return nil, err
	}
	m.log.Info("identity provider created", zap.String("key", created.Key))
	return created, nil
}

// Get returns the provider by id, or domain.ErrNotFound.
func (m *Manager) Get(ctx context.Context, id uint) (*IdentityProvider, error) {
	return m.storage.GetProvider(ctx, id)
}

// GetByKey returns the provider by its unique key, or domain.ErrNotFound.
func (m *Manager) GetByKey(ctx context.Context, key string) (*IdentityProvider, error) {
	return m.storage.GetProviderByKey(ctx, key)
}

// List returns all providers, newest first.
func (m *Manager) List(ctx context.Context) ([]IdentityProvider, error) {
	return m.storage.ListProviders(ctx)
}

// Update applies the non-nil fields of upd to an existing provider.
func (m *Manager) Update(ctx context.Context, id uint, upd Update) (*IdentityProvider, error) {
	p, err := m.storage.GetProvider(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Type != nil {
		p.Type = *upd.Type
	}
	if upd.Config != nil {
		p.Config = *upd.Config
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}

	return m.storage.UpdateProvider(ctx, p)
}

// ToggleStatus flips the provider's active flag and returns the new state.
func (m *Manager) ToggleStatus(ctx context.Context, id uint) (*IdentityProvider, error) {
	p, err := m.storage.GetProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	p.IsActive = !p.IsActive

	updated, err := m.storage.UpdateProvider(ctx, p)
	if err != nil {
		return nil, err
	}
	m.log.Info("identity provider toggled",
		zap.String("key", updated.Key),
		zap.Bool("is_active", updated.IsActive),
	)
	return updated, nil
}

// Delete removes the provider record.
func (m *Manager) Delete(ctx context.Context, id uint) error {
	return m.storage.DeleteProvider(ctx, id)
}
