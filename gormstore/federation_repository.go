package gormstore

import (
	"context"

	"github.com/getgatekit/gatekit/domain"
	"github.com/getgatekit/gatekit/federation"
)

func (r *Repository) CreateExternalIdentity(ctx context.Context, e *federation.ExternalIdentity) (*federation.ExternalIdentity, error) {
	ge := fromCoreExternalIdentity(e)
	if err := r.db.WithContext(ctx).Create(ge).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreExternalIdentity(ge), nil
}

func (r *Repository) GetExternalIdentity(ctx context.Context, id uint) (*federation.ExternalIdentity, error) {
	var ge gormExternalIdentity
	err := r.db.WithContext(ctx).First(&ge, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreExternalIdentity(&ge), nil
}

func (r *Repository) FindExternalIdentity(ctx context.Context, query map[string]any) (*federation.ExternalIdentity, error) {
	var ge gormExternalIdentity
	err := r.db.WithContext(ctx).Where(query).First(&ge).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreExternalIdentity(&ge), nil
}

func (r *Repository) ListExternalIdentities(ctx context.Context) ([]federation.ExternalIdentity, error) {
	var rows []gormExternalIdentity
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreExternalIdentities(rows), nil
}

func (r *Repository) ListExternalIdentitiesByEntity(ctx context.Context, entityTable, entityID string) ([]federation.ExternalIdentity, error) {
	var rows []gormExternalIdentity
	err := r.db.WithContext(ctx).
		Where("entity_table = ? AND entity_id = ?", entityTable, entityID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreExternalIdentities(rows), nil
}

func (r *Repository) UpdateExternalIdentity(ctx context.Context, e *federation.ExternalIdentity) (*federation.ExternalIdentity, error) {
	ge := fromCoreExternalIdentity(e)
	if err := r.db.WithContext(ctx).Save(ge).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreExternalIdentity(ge), nil
}

func (r *Repository) DeleteExternalIdentity(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&gormExternalIdentity{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toCoreExternalIdentities(rows []gormExternalIdentity) []federation.ExternalIdentity {
	out := make([]federation.ExternalIdentity, len(rows))
	for i := range rows {
		out[i] = *toCoreExternalIdentity(&rows[i])
	}
	return out
}

// Compile-time interface check
var _ federation.Storage = (*Repository)(nil)
