package gormstore

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/getgatekit/gatekit/domain"
	"github.com/getgatekit/gatekit/link"
)

// UpsertLink inserts the link or, when the composite key already exists,
// overwrites the stored role in place. The ON CONFLICT clause makes
// concurrent grants for the same triple converge on a single row.
func (r *Repository) UpsertLink(ctx context.Context, l *link.AccountLink) (*link.AccountLink, error) {
	gl := fromCoreLink(l)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account_id"},
			{Name: "entity_table"},
			{Name: "entity_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(gl).Error
	if err != nil {
		return nil, translate(err)
	}

	// Re-read so the returned record carries the original created_at when
	// the upsert hit an existing row.
	return r.GetLink(ctx, l.AccountID, l.EntityTable, l.EntityID)
}

func (r *Repository) GetLink(ctx context.Context, accountID, entityTable, entityID string) (*link.AccountLink, error) {
	var gl gormAccountLink
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND entity_table = ? AND entity_id = ?", accountID, entityTable, entityID).
		First(&gl).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreLink(&gl), nil
}

func (r *Repository) ListLinks(ctx context.Context) ([]link.AccountLink, error) {
	var rows []gormAccountLink
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreLinks(rows), nil
}

func (r *Repository) ListLinksByAccount(ctx context.Context, accountID string) ([]link.AccountLink, error) {
	var rows []gormAccountLink
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreLinks(rows), nil
}

func (r *Repository) ListLinksByEntity(ctx context.Context, entityTable, entityID string) ([]link.AccountLink, error) {
	var rows []gormAccountLink
	err := r.db.WithContext(ctx).
		Where("entity_table = ? AND entity_id = ?", entityTable, entityID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreLinks(rows), nil
}

func (r *Repository) UpdateLinkRole(ctx context.Context, accountID, entityTable, entityID, role string) (*link.AccountLink, error) {
	res := r.db.WithContext(ctx).Model(&gormAccountLink{}).
		Where("account_id = ? AND entity_table = ? AND entity_id = ?", accountID, entityTable, entityID).
		Update("role", role)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetLink(ctx, accountID, entityTable, entityID)
}

func (r *Repository) DeleteLink(ctx context.Context, accountID, entityTable, entityID string) error {
	res := r.db.WithContext(ctx).
		Where("account_id = ? AND entity_table = ? AND entity_id = ?", accountID, entityTable, entityID).
		Delete(&gormAccountLink{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toCoreLinks(rows []gormAccountLink) []link.AccountLink {
	out := make([]link.AccountLink, len(rows))
	for i := range rows {
		out[i] = *toCoreLink(&rows[i])
	}
	return out
}

// Compile-time interface check
var _ link.Storage = (*Repository)(nil)
