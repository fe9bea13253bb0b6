package postgres

import (
	"context"
	"strings"

	"vet-practice-api/internal/domain/clients"
)

type ClientsRepo struct {
	q querier
}

const clientColumns = `
	id, organization_id,
	first_name, last_name, email, phone, address, notes,
	is_deleted, deleted_at, deleted_by, deletion_reason,
	created_by_vet_id, created_at, updated_at`

func (r *ClientsRepo) Create(ctx context.Context, c clients.Client) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		c.ID,
		c.OrganizationID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Address,
		c.Notes,
		c.IsDeleted,
		c.DeletedAt,
		c.DeletedBy,
		c.DeletionReason,
		c.CreatedByVetID,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *ClientsRepo) Update(ctx context.Context, c clients.Client) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE clients
		SET
			first_name = $3,
			last_name = $4,
			email = $5,
			phone = $6,
			address = $7,
			notes = $8,
			is_deleted = $9,
			deleted_at = $10,
			deleted_by = $11,
			deletion_reason = $12,
			updated_at = $13
		WHERE id = $1 AND organization_id = $2
	`,
		c.ID,
		c.OrganizationID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Address,
		c.Notes,
		c.IsDeleted,
		c.DeletedAt,
		c.DeletedBy,
		c.DeletionReason,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, clients.ErrNotFound)
}

func (r *ClientsRepo) GetByID(ctx context.Context, orgID, id string) (clients.Client, error) {
	return r.get(ctx, orgID, id, "")
}

func (r *ClientsRepo) GetForUpdate(ctx context.Context, orgID, id string) (clients.Client, error) {
	return r.get(ctx, orgID, id, " FOR UPDATE")
}

func (r *ClientsRepo) get(ctx context.Context, orgID, id, lock string) (clients.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return clients.Client{}, clients.ErrNotFound
	}
	row := r.q.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = $1 AND organization_id = $2`+lock, id, orgID)
	c, err := scanClient(row)
	if err != nil {
		return clients.Client{}, notFound(err, clients.ErrNotFound)
	}
	return c, nil
}

func (r *ClientsRepo) List(ctx context.Context, orgID string, f clients.ListFilter) ([]clients.Client, error) {
	search := strings.TrimSpace(f.Search)
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE organization_id = $1
			AND ($2 OR NOT is_deleted)
			AND ($3 = '' OR (first_name || ' ' || last_name || ' ' || email || ' ' || phone) ILIKE '%' || $3 || '%')
		ORDER BY last_name ASC, first_name ASC
	`, orgID, f.IncludeDeleted, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]clients.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClient(s rowScanner) (clients.Client, error) {
	var c clients.Client
	err := s.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.Notes,
		&c.IsDeleted,
		&c.DeletedAt,
		&c.DeletedBy,
		&c.DeletionReason,
		&c.CreatedByVetID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
