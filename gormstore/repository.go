// Package gormstore implements every gatekit storage interface on top of
// GORM. One Repository over a shared *gorm.DB backs the link, account,
// provider, federation and audit stores; the database schema enforces the
// composite uniqueness invariants.
package gormstore

import (
	"errors"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/getgatekit/gatekit/domain"
)

// Repository is the GORM-backed implementation of all gatekit stores.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps an existing GORM connection. Driver error translation
// is forced on so duplicate keys and missing records surface as the domain
// sentinels no matter how the connection was opened.
func NewRepository(db *gorm.DB) *Repository {
	db.Config.TranslateError = true
	return &Repository{db: db}
}

// DB exposes the underlying connection, e.g. for health checks.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

func init() {
	Register("sqlite", sqlite.Open)
	Register("postgres", postgres.Open)
	Register("mysql", mysql.Open)
}

// AutoMigrate creates or updates all gatekit tables.
func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&gormAccountLink{},
		&gormUserAccount{},
		&gormIdentityProvider{},
		&gormExternalIdentity{},
		&gormAuditEvent{},
	)
}

// translate maps GORM errors onto the domain sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrConflict
	default:
		return err
	}
}
