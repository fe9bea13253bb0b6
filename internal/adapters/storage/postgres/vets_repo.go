package postgres

import (
	"context"
	"strings"

	"vet-practice-api/internal/domain/vets"
)

type VetsRepo struct {
	q querier
}

var vetUniques = map[string]error{
	"vets_email_uq":        vets.ErrEmailTaken,
	"vets_auth_subject_uq": vets.ErrSubjectTaken,
}

const vetColumns = `
	id, auth_subject, email, name, status, is_master_admin, created_at, updated_at`

func (r *VetsRepo) Create(ctx context.Context, v vets.Vet) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO vets (`+vetColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		v.ID,
		v.AuthSubject,
		v.Email,
		v.Name,
		v.Status,
		v.IsMasterAdmin,
		v.CreatedAt,
		v.UpdatedAt,
	)
	return mapUnique(err, vetUniques)
}

func (r *VetsRepo) Update(ctx context.Context, v vets.Vet) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE vets
		SET
			email = $2,
			name = $3,
			status = $4,
			is_master_admin = $5,
			updated_at = $6
		WHERE id = $1
	`,
		v.ID,
		v.Email,
		v.Name,
		v.Status,
		v.IsMasterAdmin,
		v.UpdatedAt,
	)
	if err != nil {
		return mapUnique(err, vetUniques)
	}
	return checkAffected(res, vets.ErrNotFound)
}

func (r *VetsRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	return r.getOne(ctx, `id = $1`, strings.TrimSpace(id))
}

func (r *VetsRepo) GetBySubject(ctx context.Context, subject string) (vets.Vet, error) {
	return r.getOne(ctx, `auth_subject = $1`, subject)
}

func (r *VetsRepo) GetByEmail(ctx context.Context, email string) (vets.Vet, error) {
	return r.getOne(ctx, `lower(email) = lower($1)`, strings.TrimSpace(email))
}

func (r *VetsRepo) getOne(ctx context.Context, where string, arg any) (vets.Vet, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+vetColumns+` FROM vets WHERE `+where, arg)
	v, err := scanVet(row)
	if err != nil {
		return vets.Vet{}, notFound(err, vets.ErrNotFound)
	}
	return v, nil
}

func (r *VetsRepo) List(ctx context.Context, status vets.ApprovalStatus) ([]vets.Vet, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+vetColumns+`
		FROM vets
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at ASC, id ASC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vets.Vet, 0)
	for rows.Next() {
		v, err := scanVet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVet(s rowScanner) (vets.Vet, error) {
	var v vets.Vet
	err := s.Scan(
		&v.ID,
		&v.AuthSubject,
		&v.Email,
		&v.Name,
		&v.Status,
		&v.IsMasterAdmin,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}
