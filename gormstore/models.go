package gormstore

import (
	"time"

	"github.com/getgatekit/gatekit/account"
	"github.com/getgatekit/gatekit/audit"
	"github.com/getgatekit/gatekit/domain"
	"github.com/getgatekit/gatekit/federation"
	"github.com/getgatekit/gatekit/link"
	"github.com/getgatekit/gatekit/provider"
)

// gormAccountLink stores role grants with a composite primary key, which is
// what enforces the one-role-per-(account, entity) invariant at the database
// level.
type gormAccountLink struct {
	AccountID   string    `gorm:"primaryKey;size:255"`
	EntityTable string    `gorm:"primaryKey;size:255"`
	EntityID    string    `gorm:"primaryKey;size:255"`
	Role        string    `gorm:"size:64;default:user"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (gormAccountLink) TableName() string { return "account_links" }

func toCoreLink(gl *gormAccountLink) *link.AccountLink {
	if gl == nil {
		return nil
	}
	return &link.AccountLink{
		AccountID:   gl.AccountID,
		EntityTable: gl.EntityTable,
		EntityID:    gl.EntityID,
		Role:        gl.Role,
		CreatedAt:   gl.CreatedAt,
	}
}

func fromCoreLink(l *link.AccountLink) *gormAccountLink {
	if l == nil {
		return nil
	}
	return &gormAccountLink{
		AccountID:   l.AccountID,
		EntityTable: l.EntityTable,
		EntityID:    l.EntityID,
		Role:        l.Role,
		CreatedAt:   l.CreatedAt,
	}
}

type gormUserAccount struct {
	AccountID   string     `gorm:"primaryKey;size:255"`
	KeycloakSub *string    `gorm:"size:255;uniqueIndex"`
	EmailNorm   *string    `gorm:"size:255;index"`
	Username    *string    `gorm:"size:255;index"`
	DisplayName string
	AvatarURL   string
	Status      string     `gorm:"size:32;default:active"`
	LastLoginAt *time.Time
	CreatedAt   time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (gormUserAccount) TableName() string { return "user_accounts" }

func toCoreAccount(ga *gormUserAccount) *account.UserAccount {
	if ga == nil {
		return nil
	}
	return &account.UserAccount{
		AccountID:   ga.AccountID,
		KeycloakSub: strDeref(ga.KeycloakSub),
		EmailNorm:   strDeref(ga.EmailNorm),
		Username:    strDeref(ga.Username),
		DisplayName: ga.DisplayName,
		AvatarURL:   ga.AvatarURL,
		Status:      ga.Status,
		LastLoginAt: ga.LastLoginAt,
		CreatedAt:   ga.CreatedAt,
		UpdatedAt:   ga.UpdatedAt,
	}
}

func fromCoreAccount(a *account.UserAccount) *gormUserAccount {
	if a == nil {
		return nil
	}
	return &gormUserAccount{
		AccountID:   a.AccountID,
		KeycloakSub: strPtr(a.KeycloakSub),
		EmailNorm:   strPtr(a.EmailNorm),
		Username:    strPtr(a.Username),
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
		Status:      a.Status,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type gormIdentityProvider struct {
	ID        uint        `gorm:"primaryKey;autoIncrement"`
	Key       string      `gorm:"size:255;uniqueIndex"`
	Name      string      `gorm:"size:255"`
	Type      string      `gorm:"size:64"`
	Config    domain.JSON `gorm:"type:json"`
	IsActive  bool        `gorm:"default:true"`
	CreatedAt time.Time   `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime"`
}

func (gormIdentityProvider) TableName() string { return "identity_providers" }

func toCoreProvider(gp *gormIdentityProvider) *provider.IdentityProvider {
	if gp == nil {
		return nil
	}
	return &provider.IdentityProvider{
		ID:        gp.ID,
		Key:       gp.Key,
		Name:      gp.Name,
		Type:      gp.Type,
		Config:    gp.Config,
		IsActive:  gp.IsActive,
		CreatedAt: gp.CreatedAt,
		UpdatedAt: gp.UpdatedAt,
	}
}

func fromCoreProvider(p *provider.IdentityProvider) *gormIdentityProvider {
	if p == nil {
		return nil
	}
	return &gormIdentityProvider{
		ID:        p.ID,
		Key:       p.Key,
		Name:      p.Name,
		Type:      p.Type,
		Config:    p.Config,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// gormExternalIdentity carries two composite unique indexes: one record per
// (idp_key, external_id) and one per (entity_table, entity_id, idp_key).
type gormExternalIdentity struct {
	ID          uint        `gorm:"primaryKey;autoIncrement"`
	EntityTable string      `gorm:"size:255;index:extid_idx_entity,priority:1;index:extid_uq_entity_provider,unique,priority:1"`
	EntityID    string      `gorm:"size:255;index:extid_idx_entity,priority:2;index:extid_uq_entity_provider,unique,priority:2"`
	IdpKey      string      `gorm:"size:255;index:extid_uq_provider_external,unique,priority:1;index:extid_uq_entity_provider,unique,priority:3"`
	ExternalID  string      `gorm:"size:255;index:extid_uq_provider_external,unique,priority:2"`
	Module      string      `gorm:"size:255"`
	Metadata    domain.JSON `gorm:"type:json"`
	LastSyncAt  *time.Time
	SyncStatus  string      `gorm:"size:32;default:ok"`
	CreatedAt   time.Time   `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime"`
}

func (gormExternalIdentity) TableName() string { return "external_identities" }

func toCoreExternalIdentity(ge *gormExternalIdentity) *federation.ExternalIdentity {
	if ge == nil {
		return nil
	}
	return &federation.ExternalIdentity{
		ID:          ge.ID,
		EntityTable: ge.EntityTable,
		EntityID:    ge.EntityID,
		IdpKey:      ge.IdpKey,
		ExternalID:  ge.ExternalID,
		Module:      ge.Module,
		Metadata:    ge.Metadata,
		LastSyncAt:  ge.LastSyncAt,
		SyncStatus:  ge.SyncStatus,
		CreatedAt:   ge.CreatedAt,
		UpdatedAt:   ge.UpdatedAt,
	}
}

func fromCoreExternalIdentity(e *federation.ExternalIdentity) *gormExternalIdentity {
	if e == nil {
		return nil
	}
	return &gormExternalIdentity{
		ID:          e.ID,
		EntityTable: e.EntityTable,
		EntityID:    e.EntityID,
		IdpKey:      e.IdpKey,
		ExternalID:  e.ExternalID,
		Module:      e.Module,
		Metadata:    e.Metadata,
		LastSyncAt:  e.LastSyncAt,
		SyncStatus:  e.SyncStatus,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type gormAuditEvent struct {
	ID           string      `gorm:"primaryKey"`
	Type         string      `gorm:"size:64;index"`
	ActorID      string      `gorm:"size:255;index"`
	ResourceType string      `gorm:"size:255;index:audit_idx_resource,priority:1"`
	ResourceID   string      `gorm:"size:255;index:audit_idx_resource,priority:2"`
	Status       string      `gorm:"size:32"`
	Message      string
	Metadata     domain.JSON `gorm:"type:json"`
	CreatedAt    time.Time   `gorm:"index"`
}

func (gormAuditEvent) TableName() string { return "audit_events" }

func toCoreAuditEvent(ge *gormAuditEvent) audit.Event {
	return audit.Event{
		ID:           ge.ID,
		Type:         ge.Type,
		ActorID:      ge.ActorID,
		ResourceType: ge.ResourceType,
		ResourceID:   ge.ResourceID,
		Status:       ge.Status,
		Message:      ge.Message,
		Metadata:     ge.Metadata,
		CreatedAt:    ge.CreatedAt,
	}
}

func fromCoreAuditEvent(e *audit.Event) *gormAuditEvent {
	if e == nil {
		return nil
	}
	return &gormAuditEvent{
		ID:           e.ID,
		Type:         e.Type,
		ActorID:      e.ActorID,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Status:       e.Status,
		Message:      e.Message,
		Metadata:     e.Metadata,
		CreatedAt:    e.CreatedAt,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
