package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/permissions"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/platform/apperr"
	"vet-practice-api/internal/platform/metrics"
	"vet-practice-api/internal/ports/store"

	"github.com/google/uuid"
)

var (
	ErrOrgNameRequired      = apperr.Invalid("NAME_REQUIRED", "organization name is required")
	ErrSlugConflict         = apperr.Conflict("SLUG_CONFLICT", "could not generate a unique slug; try another name")
	ErrMembershipNotFound   = apperr.NotFound("MEMBERSHIP_NOT_FOUND", "membership not found in this organization")
	ErrMemberNotActive      = apperr.Precondition("MEMBER_NOT_ACTIVE", "membership is not active")
	ErrInvalidRole          = apperr.Invalid("INVALID_ROLE", "role must be ADMIN or MEMBER")
	ErrNoPermissionChanges  = apperr.Invalid("NO_CHANGES", "at least one permission flag is required")
	ErrEmailRequired        = apperr.Invalid("EMAIL_REQUIRED", "a valid email is required")
	ErrAlreadyMember        = apperr.Conflict("ALREADY_MEMBER", "this vet is already an active member")
	ErrInvitationPending    = apperr.Conflict("INVITATION_PENDING", "there is already a pending invitation for this email")
	ErrInvitationNotFound   = apperr.NotFound("INVITATION_NOT_FOUND", "invitation not found")
	ErrInvitationNotPending = apperr.Precondition("INVITATION_NOT_PENDING", "invitation is no longer pending")
	ErrInvitationExpired    = apperr.Precondition("INVITATION_EXPIRED", "invitation has expired")
	ErrInvitationMismatch   = apperr.Forbidden("INVITATION_EMAIL_MISMATCH", "this invitation was sent to a different email")
)

const slugAttempts = 5

// CreateOrganization crea la organización y la membresía OWNER del creador.
// Un choque de slug reintenta la transacción completa con otro sufijo.
func (s *Service) CreateOrganization(ctx context.Context, actor vets.Vet, name string) (orgs.Organization, orgs.Membership, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return orgs.Organization{}, orgs.Membership{}, ErrOrgNameRequired
	}
	if err := requireApproved(actor); err != nil {
		return orgs.Organization{}, orgs.Membership{}, err
	}

	var (
		org    orgs.Organization
		member orgs.Membership
	)
	for attempt := 0; attempt < slugAttempts; attempt++ {
		now := s.now()
		org = orgs.Organization{
			ID:             uuid.NewString(),
			Name:           name,
			Slug:           orgs.GenerateSlug(name),
			CreatedByVetID: actor.ID,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		member = orgs.Membership{
			ID:             uuid.NewString(),
			OrganizationID: org.ID,
			VetID:          actor.ID,
			Role:           orgs.RoleOwner,
			Status:         orgs.MembershipActive,
			Capabilities:   orgs.AllCapabilities,
			JoinedAt:       now,
			UpdatedAt:      now,
		}

		err := s.store.RunInTx(ctx, func(tx store.Tx) error {
			if err := tx.Orgs().CreateOrganization(ctx, org); err != nil {
				return err
			}
			return tx.Orgs().CreateMembership(ctx, member)
		})
		if errors.Is(err, orgs.ErrSlugTaken) {
			continue
		}
		if err != nil {
			metrics.Mutations.WithLabelValues("CREATE_ORGANIZATION", resultCode(err)).Inc()
			return orgs.Organization{}, orgs.Membership{}, err
		}

		metrics.Mutations.WithLabelValues("CREATE_ORGANIZATION", "ok").Inc()
		s.record(ctx, activity.Entry{
			VetID:          actor.ID,
			OrganizationID: org.ID,
			Action:         "ORGANIZATION_CREATED",
			EntityType:     "organization",
			EntityID:       org.ID,
			Description:    fmt.Sprintf("Created organization %s", org.Name),
			Metadata:       map[string]any{"slug": org.Slug},
		})
		return org, member, nil
	}

	metrics.Mutations.WithLabelValues("CREATE_ORGANIZATION", ErrSlugConflict.Code).Inc()
	return orgs.Organization{}, orgs.Membership{}, ErrSlugConflict
}

func (s *Service) ListMyOrganizations(ctx context.Context, actor vets.Vet) ([]orgs.Organization, error) {
	var out []orgs.Organization
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Orgs().ListOrganizationsByVet(ctx, actor.ID)
		return err
	})
	return out, err
}

func (s *Service) GetOrganization(ctx context.Context, actor vets.Vet, orgID string) (orgs.Organization, error) {
	var out orgs.Organization
	err := s.read(ctx, actor, orgID, permissions.ActionViewRecords, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Orgs().GetOrganization(ctx, orgID)
		return err
	})
	return out, err
}

func (s *Service) ListMembers(ctx context.Context, actor vets.Vet, orgID string) ([]orgs.Membership, error) {
	var out []orgs.Membership
	err := s.read(ctx, actor, orgID, permissions.ActionViewMembers, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Orgs().ListMemberships(ctx, orgID)
		return err
	})
	return out, err
}

// loadTarget trae la membresía membershipID y exige que sea de orgID.
func loadTarget(ctx context.Context, tx store.Tx, orgID, membershipID string) (orgs.Membership, error) {
	m, err := tx.Orgs().GetMembership(ctx, strings.TrimSpace(membershipID))
	if err != nil {
		return orgs.Membership{}, apperr.Translate(err, orgs.ErrMembershipNotFound, ErrMembershipNotFound)
	}
	if m.OrganizationID != orgID {
		return orgs.Membership{}, ErrMembershipNotFound
	}
	return m, nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, actor vets.Vet, orgID, membershipID string, role orgs.Role) (orgs.Membership, error) {
	var out orgs.Membership
	err := s.mutate(ctx, actor, orgID, permissions.ActionUpdateMemberRole, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		target, err := loadTarget(ctx, tx, orgID, membershipID)
		if err != nil {
			return activity.Entry{}, err
		}
		if !role.Valid() {
			return activity.Entry{}, ErrInvalidRole
		}
		if err := permissions.CheckRoleChange(target, role); err != nil {
			return activity.Entry{}, err
		}
		if !target.IsActive() {
			return activity.Entry{}, ErrMemberNotActive
		}

		from := target.Role
		target.Role = role
		target.UpdatedAt = s.now()
		if err := tx.Orgs().UpdateMembership(ctx, target); err != nil {
			return activity.Entry{}, err
		}
		out = target
		return activity.Entry{
			Action:      "MEMBER_ROLE_UPDATED",
			EntityType:  "membership",
			EntityID:    target.ID,
			Description: fmt.Sprintf("Changed member role from %s to %s", from, role),
			Metadata:    map[string]any{"from": from, "to": role, "vetId": target.VetID},
		}, nil
	})
	return out, err
}

func (s *Service) UpdateMemberPermissions(ctx context.Context, actor vets.Vet, orgID, membershipID string, p orgs.CapabilityPatch) (orgs.Membership, error) {
	var out orgs.Membership
	err := s.mutate(ctx, actor, orgID, permissions.ActionUpdateMemberPerms, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		if p.Empty() {
			return activity.Entry{}, ErrNoPermissionChanges
		}
		target, err := loadTarget(ctx, tx, orgID, membershipID)
		if err != nil {
			return activity.Entry{}, err
		}
		if err := permissions.CheckPermissionEdit(target); err != nil {
			return activity.Entry{}, err
		}
		if !target.IsActive() {
			return activity.Entry{}, ErrMemberNotActive
		}

		before := target.Capabilities
		target.Capabilities = p.Apply(target.Capabilities)
		target.UpdatedAt = s.now()
		if err := tx.Orgs().UpdateMembership(ctx, target); err != nil {
			return activity.Entry{}, err
		}
		out = target
		return activity.Entry{
			Action:      "MEMBER_PERMISSIONS_UPDATED",
			EntityType:  "membership",
			EntityID:    target.ID,
			Description: "Updated member permissions",
			Metadata:    map[string]any{"before": before.Flags(), "after": target.Capabilities.Flags(), "vetId": target.VetID},
		}, nil
	})
	return out, err
}

func (s *Service) RemoveMember(ctx context.Context, actor vets.Vet, orgID, membershipID string) (orgs.Membership, error) {
	var out orgs.Membership
	err := s.mutate(ctx, actor, orgID, permissions.ActionRemoveMember, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		target, err := loadTarget(ctx, tx, orgID, membershipID)
		if err != nil {
			return activity.Entry{}, err
		}
		if err := permissions.CheckRemoval(target); err != nil {
			return activity.Entry{}, err
		}
		if !target.IsActive() {
			return activity.Entry{}, ErrMemberNotActive
		}

		target.Status = orgs.MembershipRemoved
		target.UpdatedAt = s.now()
		if err := tx.Orgs().UpdateMembership(ctx, target); err != nil {
			return activity.Entry{}, err
		}
		out = target
		return activity.Entry{
			Action:      "MEMBER_REMOVED",
			EntityType:  "membership",
			EntityID:    target.ID,
			Description: "Removed member from organization",
			Metadata:    map[string]any{"vetId": target.VetID},
		}, nil
	})
	return out, err
}

func (s *Service) LeaveOrganization(ctx context.Context, actor vets.Vet, orgID string) error {
	return s.mutate(ctx, actor, orgID, permissions.ActionLeaveOrganization, func(ctx context.Context, tx store.Tx, m *orgs.Membership) (activity.Entry, error) {
		// Un master admin sin membresía no tiene de qué irse.
		if m == nil {
			return activity.Entry{}, permissions.ErrNotOrgMember
		}
		if err := permissions.CheckLeave(*m); err != nil {
			return activity.Entry{}, err
		}
		if !m.IsActive() {
			return activity.Entry{}, permissions.ErrMembershipInactive
		}

		self := *m
		self.Status = orgs.MembershipLeft
		self.UpdatedAt = s.now()
		if err := tx.Orgs().UpdateMembership(ctx, self); err != nil {
			return activity.Entry{}, err
		}
		return activity.Entry{
			Action:      "MEMBER_LEFT",
			EntityType:  "membership",
			EntityID:    self.ID,
			Description: "Left the organization",
		}, nil
	})
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (s *Service) InviteMember(ctx context.Context, actor vets.Vet, orgID, email string, role orgs.Role) (orgs.Invitation, error) {
	var out orgs.Invitation
	err := s.mutate(ctx, actor, orgID, permissions.ActionInviteMembers, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		email := normalizeEmail(email)
		if email == "" || !strings.Contains(email, "@") {
			return activity.Entry{}, ErrEmailRequired
		}
		if role == orgs.RoleOwner {
			return activity.Entry{}, permissions.ErrCannotAssignOwner
		}
		if !role.Valid() {
			return activity.Entry{}, ErrInvalidRole
		}

		// Email de un vet que ya es miembro activo.
		if v, err := tx.Vets().GetByEmail(ctx, email); err == nil {
			m, err := tx.Orgs().FindMembership(ctx, orgID, v.ID)
			if err == nil && m.IsActive() {
				return activity.Entry{}, ErrAlreadyMember
			}
			if err != nil && !errors.Is(err, orgs.ErrMembershipNotFound) {
				return activity.Entry{}, err
			}
		} else if !errors.Is(err, vets.ErrNotFound) {
			return activity.Entry{}, err
		}

		now := s.now()
		pending, err := tx.Orgs().ListInvitationsByEmail(ctx, email)
		if err != nil {
			return activity.Entry{}, err
		}
		for _, inv := range pending {
			if inv.OrganizationID == orgID && inv.IsPending(now) {
				return activity.Entry{}, ErrInvitationPending
			}
		}

		out = orgs.Invitation{
			ID:             uuid.NewString(),
			OrganizationID: orgID,
			Email:          email,
			Role:           role,
			InvitedByVetID: actor.ID,
			Status:         orgs.InvitationPending,
			ExpiresAt:      now.Add(orgs.InvitationTTL),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Orgs().CreateInvitation(ctx, out); err != nil {
			return activity.Entry{}, err
		}
		return activity.Entry{
			Action:      "MEMBER_INVITED",
			EntityType:  "invitation",
			EntityID:    out.ID,
			Description: fmt.Sprintf("Invited %s as %s", email, role),
			Metadata:    map[string]any{"email": email, "role": role},
		}, nil
	})
	return out, err
}

func (s *Service) ListInvitations(ctx context.Context, actor vets.Vet, orgID string) ([]orgs.Invitation, error) {
	var out []orgs.Invitation
	err := s.read(ctx, actor, orgID, permissions.ActionInviteMembers, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Orgs().ListInvitations(ctx, orgID)
		return err
	})
	return out, err
}

func (s *Service) RevokeInvitation(ctx context.Context, actor vets.Vet, orgID, invitationID string) (orgs.Invitation, error) {
	var out orgs.Invitation
	err := s.mutate(ctx, actor, orgID, permissions.ActionRevokeInvitation, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		inv, err := tx.Orgs().GetInvitation(ctx, strings.TrimSpace(invitationID))
		if err != nil {
			return activity.Entry{}, apperr.Translate(err, orgs.ErrInvitationNotFound, ErrInvitationNotFound)
		}
		if inv.OrganizationID != orgID {
			return activity.Entry{}, ErrInvitationNotFound
		}
		if inv.Status != orgs.InvitationPending {
			return activity.Entry{}, ErrInvitationNotPending
		}

		inv.Status = orgs.InvitationRevoked
		inv.UpdatedAt = s.now()
		if err := tx.Orgs().UpdateInvitation(ctx, inv); err != nil {
			return activity.Entry{}, err
		}
		out = inv
		return activity.Entry{
			Action:      "INVITATION_REVOKED",
			EntityType:  "invitation",
			EntityID:    inv.ID,
			Description: fmt.Sprintf("Revoked invitation for %s", inv.Email),
		}, nil
	})
	return out, err
}

// ListMyInvitations devuelve las invitaciones pendientes dirigidas al email del vet.
func (s *Service) ListMyInvitations(ctx context.Context, actor vets.Vet) ([]orgs.Invitation, error) {
	var all []orgs.Invitation
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		all, err = tx.Orgs().ListInvitationsByEmail(ctx, actor.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]orgs.Invitation, 0, len(all))
	for _, inv := range all {
		if inv.IsPending(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// AcceptInvitation no pasa por el resolver: quien acepta todavía no es miembro.
// Una membresía previa (REMOVED o LEFT) se reactiva sin flags.
func (s *Service) AcceptInvitation(ctx context.Context, actor vets.Vet, invitationID string) (orgs.Membership, error) {
	if err := requireApproved(actor); err != nil {
		return orgs.Membership{}, err
	}

	var (
		out orgs.Membership
		inv orgs.Invitation
	)
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		inv, err = tx.Orgs().GetInvitation(ctx, strings.TrimSpace(invitationID))
		if err != nil {
			return apperr.Translate(err, orgs.ErrInvitationNotFound, ErrInvitationNotFound)
		}
		if !strings.EqualFold(inv.Email, normalizeEmail(actor.Email)) {
			return ErrInvitationMismatch
		}
		now := s.now()
		if inv.Status != orgs.InvitationPending {
			return ErrInvitationNotPending
		}
		if !inv.IsPending(now) {
			return ErrInvitationExpired
		}

		existing, err := tx.Orgs().FindMembership(ctx, inv.OrganizationID, actor.ID)
		switch {
		case err == nil && existing.IsActive():
			return ErrAlreadyMember
		case err == nil:
			existing.Role = inv.Role
			existing.Status = orgs.MembershipActive
			existing.Capabilities = orgs.NewCapabilities()
			existing.JoinedAt = now
			existing.UpdatedAt = now
			if err := tx.Orgs().UpdateMembership(ctx, existing); err != nil {
				return err
			}
			out = existing
		case errors.Is(err, orgs.ErrMembershipNotFound):
			out = orgs.Membership{
				ID:             uuid.NewString(),
				OrganizationID: inv.OrganizationID,
				VetID:          actor.ID,
				Role:           inv.Role,
				Status:         orgs.MembershipActive,
				JoinedAt:       now,
				UpdatedAt:      now,
			}
			if err := tx.Orgs().CreateMembership(ctx, out); err != nil {
				return err
			}
		default:
			return err
		}

		inv.Status = orgs.InvitationAccepted
		inv.UpdatedAt = now
		return tx.Orgs().UpdateInvitation(ctx, inv)
	})
	if err != nil {
		metrics.Mutations.WithLabelValues("ACCEPT_INVITATION", resultCode(err)).Inc()
		return orgs.Membership{}, err
	}

	metrics.Mutations.WithLabelValues("ACCEPT_INVITATION", "ok").Inc()
	s.record(ctx, activity.Entry{
		VetID:          actor.ID,
		OrganizationID: inv.OrganizationID,
		Action:         "INVITATION_ACCEPTED",
		EntityType:     "membership",
		EntityID:       out.ID,
		Description:    fmt.Sprintf("%s joined as %s", actor.Email, out.Role),
		Metadata:       map[string]any{"invitationId": inv.ID},
	})
	return out, nil
}

func resultCode(err error) string {
	if code := apperr.CodeOf(err); code != "" {
		return code
	}
	return "internal"
}
