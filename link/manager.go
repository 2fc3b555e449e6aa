package link

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/getgatekit/gatekit/audit"
	"github.com/getgatekit/gatekit/domain"
	"github.com/getgatekit/gatekit/role"
)

// DefaultRole is assigned when a grant request carries no role.
const DefaultRole = "user"

// ActorResolver extracts the acting account id from a request context.
// Used only to attribute audit events; an empty result is recorded as-is.
type ActorResolver func(ctx context.Context) string

// Manager exposes the AccountLink operations over a Storage backend.
type Manager struct {
	storage Storage
	auditor audit.Store
	actor   ActorResolver
	log     *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithAuditStore enables synchronous audit events for mutations.
func WithAuditStore(s audit.Store) Option {
	return func(m *Manager) { m.auditor = s }
}

// WithActorResolver sets how audit events resolve the acting account.
func WithActorResolver(r ActorResolver) Option {
	return func(m *Manager) { m.actor = r }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a new link Manager.
func NewManager(storage Storage, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		actor:   func(context.Context) string { return "" },
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Grant upserts the link for (accountID, entityTable, entityID). If a link
// already exists for the triple its role is overwritten, never duplicated.
// An empty role defaults to DefaultRole.
func (m *Manager) Grant(ctx context.Context, accountID, entityTable, entityID, roleName string) (*AccountLink, error) {
	if err := validateTriple(accountID, entityTable, entityID); err != nil {
		return nil, err
	}
	if roleName == "" {
		roleName = DefaultRole
	}

	l, err := m.storage.UpsertLink(ctx, &AccountLink{
		AccountID:   accountID,
		EntityTable: entityTable,
		EntityID:    entityID,
		Role:        roleName,
	})
	if err != nil {
		m.recordEvent(ctx, audit.EventLinkGranted, audit.StatusFailure, accountID, entityTable, entityID, roleName)
		return nil, err
	}

	m.log.Info("link granted",
		zap.String("account_id", accountID),
		zap.String("entity_table", entityTable),
		zap.String("entity_id", entityID),
		zap.String("role", l.Role),
	)
	m.recordEvent(ctx, audit.EventLinkGranted, audit.StatusSuccess, accountID, entityTable, entityID, l.Role)
	return l, nil
}

// Get returns the link for the triple, or domain.ErrNotFound.
func (m *Manager) Get(ctx context.Context, accountID, entityTable, entityID string) (*AccountLink, error) {
	return m.storage.GetLink(ctx, accountID, entityTable, entityID)
}

// ListAll returns every link, newest first.
func (m *Manager) ListAll(ctx context.Context) ([]AccountLink, error) {
	return m.storage.ListLinks(ctx)
}

// ListByAccount returns the account's links, newest first.
func (m *Manager) ListByAccount(ctx context.Context, accountID string) ([]AccountLink, error) {
	return m.storage.ListLinksByAccount(ctx, accountID)
}

// ListByEntity returns all links on one entity, newest first.
func (m *Manager) ListByEntity(ctx context.Context, entityTable, entityID string) ([]AccountLink, error) {
	return m.storage.ListLinksByEntity(ctx, entityTable, entityID)
}

// SetRole overwrites the role of an existing link. Unlike Grant it never
// creates: a missing triple yields domain.ErrNotFound. The old role is not
// kept.
func (m *Manager) SetRole(ctx context.Context, accountID, entityTable, entityID, roleName string) (*AccountLink, error) {
	if err := validateTriple(accountID, entityTable, entityID); err != nil {
		return nil, err
	}
	if roleName == "" {
		return nil, fmt.Errorf("%w: role must not be empty", domain.ErrValidation)
	}

	l, err := m.storage.UpdateLinkRole(ctx, accountID, entityTable, entityID, roleName)
	if err != nil {
		return nil, err
	}

	m.log.Info("link role changed",
		zap.String("account_id", accountID),
		zap.String("entity_table", entityTable),
		zap.String("entity_id", entityID),
		zap.String("role", roleName),
	)
	m.recordEvent(ctx, audit.EventLinkRoleChanged, audit.StatusSuccess, accountID, entityTable, entityID, roleName)
	return l, nil
}

// Revoke deletes the link for the triple. A missing triple yields
// domain.ErrNotFound, never a silent success.
func (m *Manager) Revoke(ctx context.Context, accountID, entityTable, entityID string) error {
	if err := m.storage.DeleteLink(ctx, accountID, entityTable, entityID); err != nil {
		return err
	}

	m.log.Info("link revoked",
		zap.String("account_id", accountID),
		zap.String("entity_table", entityTable),
		zap.String("entity_id", entityID),
	)
	m.recordEvent(ctx, audit.EventLinkRevoked, audit.StatusSuccess, accountID, entityTable, entityID, "")
	return nil
}

// HasAccess reports whether the account holds at-least-requiredRole on the
// entity. A missing link is false, not an error. An empty requiredRole means
// mere existence of a link suffices. Every call re-reads the store; there is
// no caching, so a revoke is effective on the next check.
func (m *Manager) HasAccess(ctx context.Context, accountID, entityTable, entityID, requiredRole string) (bool, error) {
	l, err := m.storage.GetLink(ctx, accountID, entityTable, entityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return role.MeetsRequirement(l.Role, requiredRole), nil
}

func (m *Manager) recordEvent(ctx context.Context, eventType, status, accountID, entityTable, entityID, roleName string) {
	if m.auditor == nil {
		return
	}

	meta, _ := json.Marshal(map[string]string{
		"account_id":   accountID,
		"entity_table": entityTable,
		"entity_id":    entityID,
		"role":         roleName,
	})

	err := m.auditor.SaveEvent(ctx, &audit.Event{
		ID:           uuid.New().String(),
		Type:         eventType,
		ActorID:      m.actor(ctx),
		ResourceType: entityTable,
		ResourceID:   entityID,
		Status:       status,
		Message:      fmt.Sprintf("%s for account %s", eventType, accountID),
		Metadata:     domain.JSON(meta),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		m.log.Warn("audit event not recorded", zap.Error(err), zap.String("type", eventType))
	}
}

func validateTriple(accountID, entityTable, entityID string) error {
	var missing []string
	if accountID == "" {
		missing = append(missing, "accountId")
	}
	if entityTable == "" {
		missing = append(missing, "entityTable")
	}
	if entityID == "" {
		missing = append(missing, "entityId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s must not be empty", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
