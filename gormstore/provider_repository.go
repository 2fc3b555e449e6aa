package gormstore

import (
	"context"

	"github.com/getgatekit/gatekit/domain"
	"github.com/getgatekit/gatekit/provider"
)

func (r *Repository) CreateProvider(ctx context.Context, p *provider.IdentityProvider) (*provider.IdentityProvider, error) {
	gp := fromCoreProvider(p)
	if err := r.db.WithContext(ctx).Create(gp).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreProvider(gp), nil
}

func (r *Repository) GetProvider(ctx context.Context, id uint) (*provider.IdentityProvider, error) {
	var gp gormIdentityProvider
	err := r.db.WithContext(ctx).First(&gp, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreProvider(&gp), nil
}

func (r *Repository) GetProviderByKey(ctx context.Context, key string) (*provider.IdentityProvider, error) {
	var gp gormIdentityProvider
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&gp).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreProvider(&gp), nil
}

func (r *Repository) ListProviders(ctx context.Context) ([]provider.IdentityProvider, error) {
	var rows []gormIdentityProvider
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]provider.IdentityProvider, len(rows))
	for i := range rows {
		out[i] = *toCoreProvider(&rows[i])
	}
	return out, nil
}

func (r *Repository) UpdateProvider(ctx context.Context, p *provider.IdentityProvider) (*provider.IdentityProvider, error) {
	gp := fromCoreProvider(p)
	if err := r.db.WithContext(ctx).Save(gp).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreProvider(gp), nil
}

func (r *Repository) DeleteProvider(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&gormIdentityProvider{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Compile-time interface check
var _ provider.Storage = (*Repository)(nil)
