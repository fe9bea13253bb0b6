package memory

import (
	"context"
	"sort"
	"strings"

	"vet-practice-api/internal/domain/orgs"
)

type orgRepo struct {
	st *state
}

func (r *orgRepo) CreateOrganization(ctx context.Context, o orgs.Organization) error {
	if strings.TrimSpace(o.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.st.orgs[o.ID]; exists {
		return errDuplicate
	}
	for _, other := range r.st.orgs {
		if other.Slug == o.Slug {
			return orgs.ErrSlugTaken
		}
	}
	r.st.orgs[o.ID] = o
	return nil
}

func (r *orgRepo) GetOrganization(ctx context.Context, id string) (orgs.Organization, error) {
	o, ok := r.st.orgs[id]
	if !ok {
		return orgs.Organization{}, orgs.ErrNotFound
	}
	return o, nil
}

func (r *orgRepo) ListOrganizationsByVet(ctx context.Context, vetID string) ([]orgs.Organization, error) {
	out := make([]orgs.Organization, 0)
	for _, m := range r.st.memberships {
		if m.VetID != vetID || !m.IsActive() {
			continue
		}
		if o, ok := r.st.orgs[m.OrganizationID]; ok {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *orgRepo) CreateMembership(ctx context.Context, m orgs.Membership) error {
	if strings.TrimSpace(m.ID) == "" {
		return errIDRequired
	}
	for _, other := range r.st.memberships {
		if other.OrganizationID == m.OrganizationID && other.VetID == m.VetID {
			return orgs.ErrMembershipExists
		}
	}
	r.st.memberships[m.ID] = m
	return nil
}

func (r *orgRepo) UpdateMembership(ctx context.Context, m orgs.Membership) error {
	if _, ok := r.st.memberships[m.ID]; !ok {
		return orgs.ErrMembershipNotFound
	}
	r.st.memberships[m.ID] = m
	return nil
}

func (r *orgRepo) GetMembership(ctx context.Context, id string) (orgs.Membership, error) {
	m, ok := r.st.memberships[id]
	if !ok {
		return orgs.Membership{}, orgs.ErrMembershipNotFound
	}
	return m, nil
}

func (r *orgRepo) FindMembership(ctx context.Context, orgID, vetID string) (orgs.Membership, error) {
	for _, m := range r.st.memberships {
		if m.OrganizationID == orgID && m.VetID == vetID {
			return m, nil
		}
	}
	return orgs.Membership{}, orgs.ErrMembershipNotFound
}

func (r *orgRepo) ListMemberships(ctx context.Context, orgID string) ([]orgs.Membership, error) {
	out := make([]orgs.Membership, 0)
	for _, m := range r.st.memberships {
		if m.OrganizationID == orgID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r *orgRepo) CreateInvitation(ctx context.Context, inv orgs.Invitation) error {
	if strings.TrimSpace(inv.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.st.invitations[inv.ID]; exists {
		return errDuplicate
	}
	r.st.invitations[inv.ID] = inv
	return nil
}

func (r *orgRepo) UpdateInvitation(ctx context.Context, inv orgs.Invitation) error {
	if _, ok := r.st.invitations[inv.ID]; !ok {
		return orgs.ErrInvitationNotFound
	}
	r.st.invitations[inv.ID] = inv
	return nil
}

func (r *orgRepo) GetInvitation(ctx context.Context, id string) (orgs.Invitation, error) {
	inv, ok := r.st.invitations[id]
	if !ok {
		return orgs.Invitation{}, orgs.ErrInvitationNotFound
	}
	return inv, nil
}

func (r *orgRepo) ListInvitations(ctx context.Context, orgID string) ([]orgs.Invitation, error) {
	return r.filterInvitations(func(inv orgs.Invitation) bool { return inv.OrganizationID == orgID }), nil
}

func (r *orgRepo) ListInvitationsByEmail(ctx context.Context, email string) ([]orgs.Invitation, error) {
	email = strings.TrimSpace(email)
	return r.filterInvitations(func(inv orgs.Invitation) bool { return strings.EqualFold(inv.Email, email) }), nil
}

func (r *orgRepo) filterInvitations(keep func(orgs.Invitation) bool) []orgs.Invitation {
	out := make([]orgs.Invitation, 0)
	for _, inv := range r.st.invitations {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
