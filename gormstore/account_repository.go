package gormstore

import (
	"context"

	"github.com/getgatekit/gatekit/account"
	"github.com/getgatekit/gatekit/domain"
)

func (r *Repository) CreateAccount(ctx context.Context, a *account.UserAccount) (*account.UserAccount, error) {
	ga := fromCoreAccount(a)
	if err := r.db.WithContext(ctx).Create(ga).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreAccount(ga), nil
}

func (r *Repository) GetAccount(ctx context.Context, accountID string) (*account.UserAccount, error) {
	var ga gormUserAccount
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&ga).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreAccount(&ga), nil
}

func (r *Repository) FindAccount(ctx context.Context, query map[string]any) (*account.UserAccount, error) {
	var ga gormUserAccount
	err := r.db.WithContext(ctx).Where(query).First(&ga).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreAccount(&ga), nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]account.UserAccount, error) {
	var rows []gormUserAccount
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]account.UserAccount, len(rows))
	for i := range rows {
		out[i] = *toCoreAccount(&rows[i])
	}
	return out, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, a *account.UserAccount) (*account.UserAccount, error) {
	ga := fromCoreAccount(a)
	if err := r.db.WithContext(ctx).Save(ga).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreAccount(ga), nil
}

func (r *Repository) DeleteAccount(ctx context.Context, accountID string) error {
	res := r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&gormUserAccount{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Compile-time interface check
var _ account.Storage = (*Repository)(nil)
