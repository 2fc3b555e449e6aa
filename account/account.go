// Package account manages user-account profile records. The access-control
// core only references accounts by id; this registry owns everything else
// (federated subject, normalized email, profile fields, status).
package account

import (
	"context"
	"time"
)

// Account statuses. Status is free-form text in storage; these are the
// values the registry itself writes.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
)

// UserAccount is an authenticated principal capable of holding roles.
type UserAccount struct {
	AccountID   string     `json:"account_id"`
	KeycloakSub string     `json:"keycloak_sub,omitempty"`
	EmailNorm   string     `json:"email_norm,omitempty"`
	Username    string     `json:"username,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Update carries the mutable profile fields. Nil pointers leave the stored
// value untouched.
type Update struct {
	KeycloakSub *string `json:"keycloak_sub,omitempty"`
	EmailNorm   *string `json:"email_norm,omitempty"`
	Username    *string `json:"username,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// Storage defines persistence for user accounts.
type Storage interface {
	CreateAccount(ctx context.Context, a *UserAccount) (*UserAccount, error)
	GetAccount(ctx context.Context, accountID string) (*UserAccount, error)
	FindAccount(ctx context.Context, query map[string]any) (*UserAccount, error)
	ListAccounts(ctx context.Context) ([]UserAccount, error)
	UpdateAccount(ctx context.Context, a *UserAccount) (*UserAccount, error)
	DeleteAccount(ctx context.Context, accountID string) error
}
