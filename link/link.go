// Package link implements the AccountLink store: the persistent mapping of
// (account, entity) pairs to roles that backs every entity access decision.
//
// An AccountLink states that an account holds a role on one domain entity,
// addressed only by a table name and an opaque id. The entity table is never
// validated against a schema; any string is legal. The triple
// (account_id, entity_table, entity_id) is unique, so an account holds
// exactly zero or one role per entity.
//
// The store is orphan-tolerant: nothing prevents a link from referencing an
// account or entity that has since been deleted elsewhere. There is no
// foreign key and no cascade; revoking is the only cleanup.
package link

import (
	"context"
	"time"
)

// AccountLink is the stored grant of a role to an account over an entity.
type AccountLink struct {
	AccountID   string    `json:"account_id"`
	EntityTable string    `json:"entity_table"`
	EntityID    string    `json:"entity_id"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines persistence for account links. Implementations must make
// UpsertLink atomic with respect to the composite uniqueness constraint:
// concurrent upserts for the same triple may race on the final role but can
// never produce two rows.
type Storage interface {
	UpsertLink(ctx context.Context, l *AccountLink) (*AccountLink, error)
	GetLink(ctx context.Context, accountID, entityTable, entityID string) (*AccountLink, error)
	ListLinks(ctx context.Context) ([]AccountLink, error)
	ListLinksByAccount(ctx context.Context, accountID string) ([]AccountLink, error)
	ListLinksByEntity(ctx context.Context, entityTable, entityID string) ([]AccountLink, error)
	UpdateLinkRole(ctx context.Context, accountID, entityTable, entityID, role string) (*AccountLink, error)
	DeleteLink(ctx context.Context, accountID, entityTable, entityID string) error
}
