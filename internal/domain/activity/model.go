package activity

import (
	"context"
	"encoding/json"
	"time"
)

// AuditLog es la traza de plataforma, orientada a máquinas. Nunca se edita.
type AuditLog struct {
	ID             string
	VetID          string
	OrganizationID *string
	Action         string
	EntityType     string
	EntityID       string
	Metadata       json.RawMessage
	CreatedAt      time.Time
}

// ActivityLog es la versión legible por humanos, por organización.
type ActivityLog struct {
	ID             string
	OrganizationID string
	VetID          string
	Action         string
	EntityType     string
	EntityID       string
	Description    string
	CreatedAt      time.Time
}

type ListFilter struct {
	EntityType string
	EntityID   string
	VetID      string
	Since      *time.Time
	Limit      int
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

func (f ListFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

// Repository es append-only: no hay Update ni Delete.
type Repository interface {
	AppendAudit(ctx context.Context, e AuditLog) error
	AppendActivity(ctx context.Context, e ActivityLog) error
	// Los listados van del más nuevo al más viejo.
	ListActivity(ctx context.Context, orgID string, f ListFilter) ([]ActivityLog, error)
	ListAudit(ctx context.Context, f ListFilter) ([]AuditLog, error)
}

// Publisher reenvía entradas de auditoría a un sink externo (cola, bus).
type Publisher interface {
	PublishAudit(ctx context.Context, e AuditLog) error
}
