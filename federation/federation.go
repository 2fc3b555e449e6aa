// Package federation manages external-identity records: the mapping between a
// domain entity (table, id) and its representation inside an external
// identity provider. Two uniqueness rules hold: one record per
// (idp_key, external_id), and one record per (entity_table, entity_id,
// idp_key).
package federation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/getgatekit/gatekit/domain"
)

// Sync statuses written by the registry.
const (
	SyncOK      = "ok"
	SyncPending = "pending"
	SyncError   = "error"
)

// ExternalIdentity maps a domain entity to a record in an external provider.
type ExternalIdentity struct {
	ID          uint        `json:"id"`
	EntityTable string      `json:"entity_table"`
	EntityID    string      `json:"entity_id"`
	IdpKey      string      `json:"idp_key"`
	ExternalID  string      `json:"external_id"`
	Module      string      `json:"module,omitempty"`
	Metadata    domain.JSON `json:"metadata"`
	LastSyncAt  *time.Time  `json:"last_sync_at,omitempty"`
	SyncStatus  string      `json:"sync_status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Update carries the mutable federation fields. Nil pointers leave the
// stored value untouched.
type Update struct {
	ExternalID *string      `json:"external_id,omitempty"`
	Module     *string      `json:"module,omitempty"`
	Metadata   *domain.JSON `json:"metadata,omitempty"`
}

// Storage defines persistence for external identities.
type Storage interface {
	CreateExternalIdentity(ctx context.Context, e *ExternalIdentity) (*ExternalIdentity, error)
	GetExternalIdentity(ctx context.Context, id uint) (*ExternalIdentity, error)
	FindExternalIdentity(ctx context.Context, query map[string]any) (*ExternalIdentity, error)
	ListExternalIdentities(ctx context.Context) ([]ExternalIdentity, error)
	ListExternalIdentitiesByEntity(ctx context.Context, entityTable, entityID string) ([]ExternalIdentity, error)
	UpdateExternalIdentity(ctx context.Context, e *ExternalIdentity) (*ExternalIdentity, error)
	DeleteExternalIdentity(ctx context.Context, id uint) error
}

// Manager exposes external-identity operations over a Storage backend.
type Manager struct {
	storage Storage
	log     *zap.Logger
}

// NewManager creates a new federation Manager.
func NewManager(storage Storage, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{storage: storage, log: log}
}

// Create stores a new external identity. The entity reference, provider key
// and external id are required.
func (m *Manager) Create(ctx context.Context, e *ExternalIdentity) (*ExternalIdentity, error) {
	if e == nil || e.EntityTable == "" || e.EntityID == "" || e.IdpKey == "" || e.ExternalID == "" {
		return nil, fmt.Errorf("%w: entityTable, entityId, idpKey and externalId must not be empty", domain.ErrValidation)
	}
	if len(e.Metadata) == 0 {
		e.Metadata = domain.JSON("{}")
	}
	if e.SyncStatus == "" {
		e.SyncStatus = SyncOK
	}

	created, err := m.storage.CreateExternalIdentity(ctx, e)
	if err != nil {
		return nil, err
	}
	m.log.Info("external identity created",
		zap.String("idp_key", created.IdpKey),
		zap.String("entity_table", created.EntityTable),
		zap.String("entity_id", created.EntityID),
	)
	return created, nil
}

// Get returns the external identity by id, or domain.ErrNotFound.
func (m *Manager) Get(ctx context.Context, id uint) (*ExternalIdentity, error) {
	return m.storage.GetExternalIdentity(ctx, id)
}

// List returns all external identities, newest first.
func (m *Manager) List(ctx context.Context) ([]ExternalIdentity, error) {
	return m.storage.ListExternalIdentities(ctx)
}

// FindByEntity returns all external identities for one entity, newest first.
func (m *Manager) FindByEntity(ctx context.Context, entityTable, entityID string) ([]ExternalIdentity, error) {
	return m.storage.ListExternalIdentitiesByEntity(ctx, entityTable, entityID)
}

// FindByProvider returns the record for (idpKey, externalId), which is unique.
func (m *Manager) FindByProvider(ctx context.Context, idpKey, externalID string) (*ExternalIdentity, error) {
	return m.storage.FindExternalIdentity(ctx, map[string]any{
		"idp_key":     idpKey,
		"external_id": externalID,
	})
}

// FindByEntityAndProvider returns the record for (entityTable, entityId,
// idpKey), which is unique.
func (m *Manager) FindByEntityAndProvider(ctx context.Context, entityTable, entityID, idpKey string) (*ExternalIdentity, error) {
	return m.storage.FindExternalIdentity(ctx, map[string]any{
		"entity_table": entityTable,
		"entity_id":    entityID,
		"idp_key":      idpKey,
	})
}

// Update applies the non-nil fields of upd to an existing record.
func (m *Manager) Update(ctx context.Context, id uint, upd Update) (*ExternalIdentity, error) {
	e, err := m.storage.GetExternalIdentity(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.ExternalID != nil {
		e.ExternalID = *upd.ExternalID
	}
	if upd.Module != nil {
		e.Module = *upd.Module
	}
	if upd.Metadata != nil {
		e.Metadata = *upd.Metadata
	}

	return m.storage.UpdateExternalIdentity(ctx, e)
}

// UpdateSyncStatus records the outcome of a synchronization attempt.
// A nil lastSyncAt keeps the previous timestamp.
func (m *Manager) UpdateSyncStatus(ctx context.Context, id uint, status string, lastSyncAt *time.Time) (*ExternalIdentity, error) {
	if status == "" {
		return nil, fmt.Errorf("%w: status must not be empty", domain.ErrValidation)
	}
	e, err := m.storage.GetExternalIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	e.SyncStatus = status
	if lastSyncAt != nil {
		e.LastSyncAt = lastSyncAt
	}
	return m.storage.UpdateExternalIdentity(ctx, e)
}

// Delete removes the record.
func (m *Manager) Delete(ctx context.Context, id uint) error {
	return m.storage.DeleteExternalIdentity(ctx, id)
}
