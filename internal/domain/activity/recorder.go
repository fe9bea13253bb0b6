package activity

import (
	"context"
	"encoding/json"
	"time"

	"vet-practice-api/internal/platform/logger"
	"vet-practice-api/internal/platform/metrics"

	"github.com/oklog/ulid/v2"
)

// Entry describe una mutación ya confirmada.
type Entry struct {
	VetID          string
	OrganizationID string
	Action         string
	EntityType     string
	EntityID       string
	Description    string
	Metadata       map[string]any
}

// Recorder escribe audit + activity después del commit. Es best-effort: un fallo
// se loguea y se cuenta, nunca se propaga al caller.
type Recorder struct {
	repo      Repository
	publisher Publisher
	log       logger.Logger
	now       func() time.Time
}

func NewRecorder(repo Repository, publisher Publisher, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	// El request pudo cancelarse después del commit; la traza se escribe igual.
	ctx = context.WithoutCancel(ctx)
	now := r.now().UTC()

	fields := map[string]any{
		"action":      e.Action,
		"entity_type": e.EntityType,
		"entity_id":   e.EntityID,
		"org_id":      e.OrganizationID,
		"vet_id":      e.VetID,
	}

	meta, err := json.Marshal(e.Metadata)
	if err != nil || e.Metadata == nil {
		meta = json.RawMessage(`{}`)
	}

	audit := AuditLog{
		ID:         ulid.Make().String(),
		VetID:      e.VetID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Metadata:   meta,
		CreatedAt:  now,
	}
	if e.OrganizationID != "" {
		org := e.OrganizationID
		audit.OrganizationID = &org
	}

	if err := r.repo.AppendAudit(ctx, audit); err != nil {
		metrics.AuditWriteFailures.WithLabelValues("audit").Inc()
		r.log.Error("audit log write failed", merge(fields, "err", err))
	}

	if e.OrganizationID != "" {
		act := ActivityLog{
			ID:             ulid.Make().String(),
			OrganizationID: e.OrganizationID,
			VetID:          e.VetID,
			Action:         e.Action,
			EntityType:     e.EntityType,
			EntityID:       e.EntityID,
			Description:    e.Description,
			CreatedAt:      now,
		}
		if err := r.repo.AppendActivity(ctx, act); err != nil {
			metrics.AuditWriteFailures.WithLabelValues("activity").Inc()
			r.log.Error("activity log write failed", merge(fields, "err", err))
		}
	}

	if r.publisher != nil {
		if err := r.publisher.PublishAudit(ctx, audit); err != nil {
			metrics.AuditWriteFailures.WithLabelValues("publisher").Inc()
			r.log.Warn("audit publish failed", merge(fields, "err", err))
		}
	}
}

func merge(m map[string]any, k string, v any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for kk, vv := range m {
		out[kk] = vv
	}
	out[k] = v
	return out
}
