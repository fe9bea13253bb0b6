package memory

import (
	"context"
	"sync"

	"vet-practice-api/internal/domain/activity"
)

// activityRepo vive fuera del estado transaccional: las trazas se escriben
// después del commit y nunca se revierten.
type activityRepo struct {
	mu       sync.RWMutex
	audit    []activity.AuditLog
	activity []activity.ActivityLog
}

func newActivityRepo() *activityRepo {
	return &activityRepo{}
}

func (r *activityRepo) AppendAudit(ctx context.Context, e activity.AuditLog) error {
	if e.ID == "" {
		return errIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audit = append(r.audit, e)
	return nil
}

func (r *activityRepo) AppendActivity(ctx context.Context, e activity.ActivityLog) error {
	if e.ID == "" {
		return errIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activity = append(r.activity, e)
	return nil
}

func (r *activityRepo) ListActivity(ctx context.Context, orgID string, f activity.ListFilter) ([]activity.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := f.EffectiveLimit()
	out := make([]activity.ActivityLog, 0)
	for i := len(r.activity) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.activity[i]
		if e.OrganizationID != orgID || !matches(f, e.EntityType, e.EntityID, e.VetID) {
			continue
		}
		if f.Since != nil && e.CreatedAt.Before(*f.Since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *activityRepo) ListAudit(ctx context.Context, f activity.ListFilter) ([]activity.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := f.EffectiveLimit()
	out := make([]activity.AuditLog, 0)
	for i := len(r.audit) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.audit[i]
		if !matches(f, e.EntityType, e.EntityID, e.VetID) {
			continue
		}
		if f.Since != nil && e.CreatedAt.Before(*f.Since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func matches(f activity.ListFilter, entityType, entityID, vetID string) bool {
	if f.EntityType != "" && f.EntityType != entityType {
		return false
	}
	if f.EntityID != "" && f.EntityID != entityID {
		return false
	}
	if f.VetID != "" && f.VetID != vetID {
		return false
	}
	return true
}
