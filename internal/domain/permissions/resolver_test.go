package permissions

import (
	"errors"
	"testing"

	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(role orgs.Role, caps ...orgs.Capability) *orgs.Membership {
	return &orgs.Membership{
		ID:           "m-1",
		VetID:        "vet-1",
		Role:         role,
		Status:       orgs.MembershipActive,
		Capabilities: orgs.NewCapabilities(caps...),
	}
}

func codeOf(d Decision) string {
	if d.Allowed {
		return ""
	}
	return d.Reason.Code
}

func TestCanPerform_MasterAdminNeedsNoMembership(t *testing.T) {
	admin := Actor{VetID: "root", IsMasterAdmin: true}

	for action := range rules {
		d := CanPerform(admin, nil, action)
		assert.True(t, d.Allowed, string(action))
	}
}

func TestCanPerform_MissingAndInactiveMembership(t *testing.T) {
	actor := Actor{VetID: "vet-1"}

	d := CanPerform(actor, nil, ActionViewRecords)
	assert.Equal(t, "NOT_ORG_MEMBER", codeOf(d))

	for _, st := range []orgs.MembershipStatus{orgs.MembershipRemoved, orgs.MembershipLeft} {
		m := member(orgs.RoleOwner)
		m.Status = st
		d := CanPerform(actor, m, ActionCreateClient)
		assert.Equal(t, "MEMBERSHIP_NOT_ACTIVE", codeOf(d), string(st))
	}
}

func TestCanPerform_RoleGateListsAcceptedRoles(t *testing.T) {
	d := CanPerform(Actor{VetID: "vet-1"}, member(orgs.RoleMember), ActionInviteMembers)
	require.False(t, d.Allowed)
	assert.Equal(t, "INSUFFICIENT_ROLE", d.Reason.Code)
	assert.Equal(t, []string{"OWNER", "ADMIN"}, d.Reason.Details["acceptedRoles"])

	d = CanPerform(Actor{VetID: "vet-1"}, member(orgs.RoleAdmin), ActionUpdateMemberPerms)
	assert.Equal(t, "INSUFFICIENT_ROLE", codeOf(d))
	assert.Equal(t, []string{"OWNER"}, d.Reason.Details["acceptedRoles"])

	d = CanPerform(Actor{VetID: "vet-1"}, member(orgs.RoleAdmin), ActionRemoveMember)
	assert.True(t, d.Allowed)
}

func TestCanPerform_OwnerIgnoresFlags(t *testing.T) {
	owner := member(orgs.RoleOwner) // sin flags
	for _, a := range []Action{ActionDeleteClient, ActionDeleteAnimal, ActionDeleteTreatment, ActionRestoreAnimal, ActionViewActivityLog} {
		assert.True(t, CanPerform(Actor{VetID: "vet-1"}, owner, a).Allowed, string(a))
	}
}

func TestCanPerform_FlagsAreIndependent(t *testing.T) {
	m := member(orgs.RoleAdmin, orgs.CanDeleteClients)

	assert.True(t, CanPerform(Actor{VetID: "vet-1"}, m, ActionDeleteClient).Allowed)

	d := CanPerform(Actor{VetID: "vet-1"}, m, ActionDeleteAnimal)
	require.False(t, d.Allowed)
	assert.Equal(t, "DELETE_PERMISSION_DENIED", d.Reason.Code)
	assert.Equal(t, "canDeleteAnimals", d.Reason.Details["permission"])

	d = CanPerform(Actor{VetID: "vet-1"}, m, ActionViewActivityLog)
	assert.Equal(t, "ACTIVITY_LOG_ACCESS_DENIED", codeOf(d))
	assert.Equal(t, "canViewActivityLog", d.Reason.Details["permission"])
}

func TestCanPerform_RoleCheckedBeforeFlags(t *testing.T) {
	// MEMBER con todos los flags igual no puede gestionar miembros.
	m := member(orgs.RoleMember, orgs.CanDeleteClients, orgs.CanDeleteAnimals, orgs.CanDeleteTreatments, orgs.CanViewActivityLog)
	assert.Equal(t, "INSUFFICIENT_ROLE", codeOf(CanPerform(Actor{VetID: "vet-1"}, m, ActionUpdateMemberRole)))
}

func TestCanPerform_UnknownAction(t *testing.T) {
	d := CanPerform(Actor{VetID: "vet-1"}, member(orgs.RoleOwner), Action("LAUNCH_ROCKETS"))
	assert.Equal(t, "UNKNOWN_ACTION", codeOf(d))
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, CanPerform(Actor{}, member(orgs.RoleMember), ActionCreateClient).Err())

	err := CanPerform(Actor{}, nil, ActionCreateClient).Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotOrgMember))
	assert.Equal(t, "NOT_ORG_MEMBER", apperr.CodeOf(err))
}

func TestStructuralOwnerProtections(t *testing.T) {
	owner := *member(orgs.RoleOwner)
	admin := *member(orgs.RoleAdmin)

	assert.ErrorIs(t, CheckRoleChange(owner, orgs.RoleAdmin), ErrCannotChangeOwner)
	assert.ErrorIs(t, CheckRoleChange(owner, orgs.RoleOwner), ErrCannotChangeOwner)
	assert.ErrorIs(t, CheckRoleChange(admin, orgs.RoleOwner), ErrCannotAssignOwner)
	assert.NoError(t, CheckRoleChange(admin, orgs.RoleMember))

	assert.ErrorIs(t, CheckRemoval(owner), ErrCannotRemoveOwner)
	assert.NoError(t, CheckRemoval(admin))

	assert.ErrorIs(t, CheckPermissionEdit(owner), ErrCannotEditOwnerPerm)
	assert.NoError(t, CheckPermissionEdit(admin))

	assert.ErrorIs(t, CheckLeave(owner), ErrOwnerCannotLeave)
	assert.NoError(t, CheckLeave(admin))
}
