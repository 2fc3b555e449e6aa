// Package audit provides a structured event trail for access-control
// mutations. Every grant, role change, and revoke is recorded synchronously
// so the trail never lags behind the decision data it explains.
package audit

import (
	"context"
	"time"

	"github.com/getgatekit/gatekit/domain"
)

// Event represents a recorded access-control mutation.
type Event struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`     // e.g. "link.granted"
	ActorID      string      `json:"actor_id"` // account performing the change, if known
	ResourceType string      `json:"resource_type,omitempty"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Status       string      `json:"status"` // "success" or "failure"
	Message      string      `json:"message"`
	Metadata     domain.JSON `json:"metadata,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Store defines the interface for persisting and querying audit events.
type Store interface {
	SaveEvent(ctx context.Context, event *Event) error

	// Query returns events matching the filter, newest first.
	Query(ctx context.Context, filter Filter) ([]Event, error)
}

// Filter for querying audit events. Zero-valued fields are ignored.
type Filter struct {
	ActorID      string
	Types        []string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}

// Event types emitted by the link manager.
const (
	EventLinkGranted     = "link.granted"
	EventLinkRoleChanged = "link.role_changed"
	EventLinkRevoked     = "link.revoked"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
