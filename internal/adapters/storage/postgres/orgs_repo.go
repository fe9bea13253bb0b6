package postgres

import (
	"context"
	"strings"

	"vet-practice-api/internal/domain/orgs"
)

type OrgsRepo struct {
	q querier
}

const orgColumns = `
	id, name, slug, created_by_vet_id, is_active, created_at, updated_at`

const membershipColumns = `
	id, organization_id, vet_id, role, status,
	can_delete_clients, can_delete_animals, can_delete_treatments, can_view_activity_log,
	joined_at, updated_at`

const invitationColumns = `
	id, organization_id, email, role, invited_by_vet_id, status, expires_at, created_at, updated_at`

func (r *OrgsRepo) CreateOrganization(ctx context.Context, o orgs.Organization) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO organizations (`+orgColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		o.ID,
		o.Name,
		o.Slug,
		o.CreatedByVetID,
		o.IsActive,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return mapUnique(err, map[string]error{"organizations_slug_uq": orgs.ErrSlugTaken})
}

func (r *OrgsRepo) GetOrganization(ctx context.Context, id string) (orgs.Organization, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, strings.TrimSpace(id))
	o, err := scanOrg(row)
	if err != nil {
		return orgs.Organization{}, notFound(err, orgs.ErrNotFound)
	}
	return o, nil
}

func (r *OrgsRepo) ListOrganizationsByVet(ctx context.Context, vetID string) ([]orgs.Organization, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT o.id, o.name, o.slug, o.created_by_vet_id, o.is_active, o.created_at, o.updated_at
		FROM organizations o
		JOIN memberships m ON m.organization_id = o.id
		WHERE m.vet_id = $1 AND m.status = $2
		ORDER BY o.name ASC
	`, vetID, orgs.MembershipActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orgs.Organization, 0)
	for rows.Next() {
		o, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrgsRepo) CreateMembership(ctx context.Context, m orgs.Membership) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO memberships (`+membershipColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		m.ID,
		m.OrganizationID,
		m.VetID,
		m.Role,
		m.Status,
		m.Capabilities.Has(orgs.CanDeleteClients),
		m.Capabilities.Has(orgs.CanDeleteAnimals),
		m.Capabilities.Has(orgs.CanDeleteTreatments),
		m.Capabilities.Has(orgs.CanViewActivityLog),
		m.JoinedAt,
		m.UpdatedAt,
	)
	return mapUnique(err, map[string]error{"memberships_org_vet_uq": orgs.ErrMembershipExists})
}

func (r *OrgsRepo) UpdateMembership(ctx context.Context, m orgs.Membership) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE memberships
		SET
			role = $2,
			status = $3,
			can_delete_clients = $4,
			can_delete_animals = $5,
			can_delete_treatments = $6,
			can_view_activity_log = $7,
			joined_at = $8,
			updated_at = $9
		WHERE id = $1
	`,
		m.ID,
		m.Role,
		m.Status,
		m.Capabilities.Has(orgs.CanDeleteClients),
		m.Capabilities.Has(orgs.CanDeleteAnimals),
		m.Capabilities.Has(orgs.CanDeleteTreatments),
		m.Capabilities.Has(orgs.CanViewActivityLog),
		m.JoinedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, orgs.ErrMembershipNotFound)
}

func (r *OrgsRepo) GetMembership(ctx context.Context, id string) (orgs.Membership, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, strings.TrimSpace(id))
	m, err := scanMembership(row)
	if err != nil {
		return orgs.Membership{}, notFound(err, orgs.ErrMembershipNotFound)
	}
	return m, nil
}

func (r *OrgsRepo) FindMembership(ctx context.Context, orgID, vetID string) (orgs.Membership, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE organization_id = $1 AND vet_id = $2
	`, orgID, vetID)
	m, err := scanMembership(row)
	if err != nil {
		return orgs.Membership{}, notFound(err, orgs.ErrMembershipNotFound)
	}
	return m, nil
}

func (r *OrgsRepo) ListMemberships(ctx context.Context, orgID string) ([]orgs.Membership, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE organization_id = $1
		ORDER BY joined_at ASC, id ASC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orgs.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *OrgsRepo) CreateInvitation(ctx context.Context, inv orgs.Invitation) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		inv.ID,
		inv.OrganizationID,
		inv.Email,
		inv.Role,
		inv.InvitedByVetID,
		inv.Status,
		inv.ExpiresAt,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	return err
}

func (r *OrgsRepo) UpdateInvitation(ctx context.Context, inv orgs.Invitation) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invitations
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, inv.ID, inv.Status, inv.UpdatedAt)
	if err != nil {
		return err
	}
	return checkAffected(res, orgs.ErrInvitationNotFound)
}

func (r *OrgsRepo) GetInvitation(ctx context.Context, id string) (orgs.Invitation, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, strings.TrimSpace(id))
	inv, err := scanInvitation(row)
	if err != nil {
		return orgs.Invitation{}, notFound(err, orgs.ErrInvitationNotFound)
	}
	return inv, nil
}

func (r *OrgsRepo) ListInvitations(ctx context.Context, orgID string) ([]orgs.Invitation, error) {
	return r.listInvitations(ctx, `organization_id = $1`, orgID)
}

func (r *OrgsRepo) ListInvitationsByEmail(ctx context.Context, email string) ([]orgs.Invitation, error) {
	return r.listInvitations(ctx, `lower(email) = lower($1)`, strings.TrimSpace(email))
}

func (r *OrgsRepo) listInvitations(ctx context.Context, where string, arg any) ([]orgs.Invitation, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE `+where+`
		ORDER BY created_at DESC, id ASC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orgs.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanOrg(s rowScanner) (orgs.Organization, error) {
	var o orgs.Organization
	err := s.Scan(
		&o.ID,
		&o.Name,
		&o.Slug,
		&o.CreatedByVetID,
		&o.IsActive,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func scanMembership(s rowScanner) (orgs.Membership, error) {
	var m orgs.Membership
	var delClients, delAnimals, delTreatments, viewActivity bool
	if err := s.Scan(
		&m.ID,
		&m.OrganizationID,
		&m.VetID,
		&m.Role,
		&m.Status,
		&delClients,
		&delAnimals,
		&delTreatments,
		&viewActivity,
		&m.JoinedAt,
		&m.UpdatedAt,
	); err != nil {
		return orgs.Membership{}, err
	}

	flags := map[orgs.Capability]bool{
		orgs.CanDeleteClients:    delClients,
		orgs.CanDeleteAnimals:    delAnimals,
		orgs.CanDeleteTreatments: delTreatments,
		orgs.CanViewActivityLog:  viewActivity,
	}
	for c, on := range flags {
		if on {
			m.Capabilities = m.Capabilities.With(c)
		}
	}
	return m, nil
}

func scanInvitation(s rowScanner) (orgs.Invitation, error) {
	var inv orgs.Invitation
	err := s.Scan(
		&inv.ID,
		&inv.OrganizationID,
		&inv.Email,
		&inv.Role,
		&inv.InvitedByVetID,
		&inv.Status,
		&inv.ExpiresAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	return inv, err
}
