package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/getgatekit/gatekit/audit"
)

func (r *Repository) SaveEvent(ctx context.Context, e *audit.Event) error {
	return translate(r.db.WithContext(ctx).Create(fromCoreAuditEvent(e)).Error)
}

func (r *Repository) Query(ctx context.Context, filter audit.Filter) ([]audit.Event, error) {
	query := r.applyAuditFilter(r.db.WithContext(ctx), filter)

	var rows []gormAuditEvent
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}

	out := make([]audit.Event, len(rows))
	for i := range rows {
		out[i] = toCoreAuditEvent(&rows[i])
	}
	return out, nil
}

func (r *Repository) applyAuditFilter(query *gorm.DB, filter audit.Filter) *gorm.DB {
	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		query = query.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	return query
}

// Compile-time interface check
var _ audit.Store = (*Repository)(nil)
