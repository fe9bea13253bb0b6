package postgres

import (
	"context"

	"vet-practice-api/internal/domain/activity"
)

type ActivityRepo struct {
	q querier
}

func (r *ActivityRepo) AppendAudit(ctx context.Context, e activity.AuditLog) error {
	meta := string(e.Metadata)
	if meta == "" {
		meta = "{}"
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, vet_id, organization_id, action, entity_type, entity_id, metadata, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8)
	`,
		e.ID,
		e.VetID,
		e.OrganizationID,
		e.Action,
		e.EntityType,
		e.EntityID,
		meta,
		e.CreatedAt,
	)
	return err
}

func (r *ActivityRepo) AppendActivity(ctx context.Context, e activity.ActivityLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO activity_logs (
			id, organization_id, vet_id, action, entity_type, entity_id, description, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.OrganizationID,
		e.VetID,
		e.Action,
		e.EntityType,
		e.EntityID,
		e.Description,
		e.CreatedAt,
	)
	return err
}

func (r *ActivityRepo) ListActivity(ctx context.Context, orgID string, f activity.ListFilter) ([]activity.ActivityLog, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, organization_id, vet_id, action, entity_type, entity_id, description, created_at
		FROM activity_logs
		WHERE organization_id = $1
			AND ($2 = '' OR entity_type = $2)
			AND ($3 = '' OR entity_id = $3)
			AND ($4 = '' OR vet_id = $4)
			AND ($5::timestamptz IS NULL OR created_at >= $5)
		ORDER BY created_at DESC, id DESC
		LIMIT $6
	`, orgID, f.EntityType, f.EntityID, f.VetID, f.Since, f.EffectiveLimit())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.ActivityLog, 0)
	for rows.Next() {
		var e activity.ActivityLog
		if err := rows.Scan(
			&e.ID,
			&e.OrganizationID,
			&e.VetID,
			&e.Action,
			&e.EntityType,
			&e.EntityID,
			&e.Description,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ActivityRepo) ListAudit(ctx context.Context, f activity.ListFilter) ([]activity.AuditLog, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, vet_id, organization_id, action, entity_type, entity_id, metadata, created_at
		FROM audit_logs
		WHERE ($1 = '' OR entity_type = $1)
			AND ($2 = '' OR entity_id = $2)
			AND ($3 = '' OR vet_id = $3)
			AND ($4::timestamptz IS NULL OR created_at >= $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5
	`, f.EntityType, f.EntityID, f.VetID, f.Since, f.EffectiveLimit())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.AuditLog, 0)
	for rows.Next() {
		var e activity.AuditLog
		var meta []byte
		if err := rows.Scan(
			&e.ID,
			&e.VetID,
			&e.OrganizationID,
			&e.Action,
			&e.EntityType,
			&e.EntityID,
			&meta,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Metadata = meta
		out = append(out, e)
	}
	return out, rows.Err()
}
