package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/getgatekit/gatekit/domain"
)

// Manager exposes user-account operations over a Storage backend.
type Manager struct {
	storage Storage
	log     *zap.Logger
}

// NewManager creates a new account Manager.
func NewManager(storage Storage, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{storage: storage, log: log}
}

// Create stores a new account. A missing AccountID is generated; a missing
// Status defaults to active.
func (m *Manager) Create(ctx context.Context, a *UserAccount) (*UserAccount, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: account must not be nil", domain.ErrValidation)
	}
	if a.AccountID == "" {
		a.AccountID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = StatusActive
	}

	created, err := m.storage.CreateAccount(ctx, a)
	if err != nil {
		return nil, err
	}
	m.log.Info("account created", zap.String("account_id", created.AccountID))
	return created, nil
}

// Get returns the account, or domain.ErrNotFound.
func (m *Manager) Get(ctx context.Context, accountID string) (*UserAccount, error) {
	return m.storage.GetAccount(ctx, accountID)
}

// FindBySubject looks an account up by its federated subject identifier.
func (m *Manager) FindBySubject(ctx context.Context, keycloakSub string) (*UserAccount, error) {
	return m.storage.FindAccount(ctx, map[string]any{"keycloak_sub": keycloakSub})
}

// FindByEmail looks an account up by its normalized email.
func (m *Manager) FindByEmail(ctx context.Context, emailNorm string) (*UserAccount, error) {
	return m.storage.FindAccount(ctx, map[string]any{"email_norm": emailNorm})
}

// FindByUsername looks an account up by username.
func (m *Manager) FindByUsername(ctx context.Context, username string) (*UserAccount, error) {
	return m.storage.FindAccount(ctx, map[string]any{"username": username})
}

// List returns all accounts, newest first.
func (m *Manager) List(ctx context.Context) ([]UserAccount, error) {
	return m.storage.ListAccounts(ctx)
}

// Update applies the non-nil fields of upd to an existing account.
func (m *Manager) Update(ctx context.Context, accountID string, upd Update) (*UserAccount, error) {
	a, err := m.storage.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if upd.KeycloakSub != nil {
		a.KeycloakSub = *upd.KeycloakSub
	}
	if upd.EmailNorm != nil {
		a.EmailNorm = *upd.EmailNorm
	}
	if upd.Username != nil {
		a.Username = *upd.Username
	}
	if upd.DisplayName != nil {
		a.DisplayName = *upd.DisplayName
	}
	if upd.AvatarURL != nil {
		a.AvatarURL = *upd.AvatarURL
	}

	return m.storage.UpdateAccount(ctx, a)
}

// SetStatus overwrites the account status.
func (m *Manager) SetStatus(ctx context.Context, accountID, status string) (*UserAccount, error) {
	if status == "" {
		return nil, fmt.Errorf("%w: status must not be empty", domain.ErrValidation)
	}
	a, err := m.storage.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	a.Status = status
	return m.storage.UpdateAccount(ctx, a)
}

// TouchLastLogin records a login time on the account.
func (m *Manager) TouchLastLogin(ctx context.Context, accountID string) (*UserAccount, error) {
	a, err := m.storage.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	a.LastLoginAt = &now
	return m.storage.UpdateAccount(ctx, a)
}

// Delete removes the account record. Links held by the account are NOT
// cascaded; see the link package for the orphan-tolerance rationale.
func (m *Manager) Delete(ctx context.Context, accountID string) error {
	if err := m.storage.DeleteAccount(ctx, accountID); err != nil {
		return err
	}
	m.log.Info("account deleted", zap.String("account_id", accountID))
	return nil
}
