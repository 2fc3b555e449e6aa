// Package gatekit wires account-to-entity access links, a role hierarchy and
// a fail-closed access guard on top of a gorm-backed store.
package gatekit

import (
	"gorm.io/gorm"

	"github.com/getgatekit/gatekit/account"
	"github.com/getgatekit/gatekit/federation"
	"github.com/getgatekit/gatekit/gormstore"
	"github.com/getgatekit/gatekit/link"
	"github.com/getgatekit/gatekit/provider"
)

// NewDefaultLinkManager creates a link Manager persisting links and audit
// events through the given gorm connection.
func NewDefaultLinkManager(db *gorm.DB) *link.Manager {
	repo := gormstore.NewRepository(db)
	return link.NewManager(repo, link.WithAuditStore(repo))
}

// NewDefaultAccountManager creates an account Manager over the given gorm
// connection.
func NewDefaultAccountManager(db *gorm.DB) *account.Manager {
	return account.NewManager(gormstore.NewRepository(db), nil)
}

// NewDefaultProviderManager creates an identity-provider Manager over the
// given gorm connection.
func NewDefaultProviderManager(db *gorm.DB) *provider.Manager {
	return provider.NewManager(gormstore.NewRepository(db), nil)
}

// NewDefaultFederationManager creates an external-identity Manager over the
// given gorm connection.
func NewDefaultFederationManager(db *gorm.DB) *federation.Manager {
	return federation.NewManager(gormstore.NewRepository(db), nil)
}
