package permissions

import "vet-practice-api/internal/domain/orgs"

type Action string

const (
	ActionViewRecords Action = "VIEW_RECORDS"
	ActionViewMembers Action = "VIEW_MEMBERS"

	ActionCreateClient  Action = "CREATE_CLIENT"
	ActionUpdateClient  Action = "UPDATE_CLIENT"
	ActionDeleteClient  Action = "DELETE_CLIENT"
	ActionRestoreClient Action = "RESTORE_CLIENT"

	ActionCreateAnimal  Action = "CREATE_ANIMAL"
	ActionUpdateAnimal  Action = "UPDATE_ANIMAL"
	ActionDeleteAnimal  Action = "DELETE_ANIMAL"
	ActionRestoreAnimal Action = "RESTORE_ANIMAL"

	ActionCreateTreatment  Action = "CREATE_TREATMENT"
	ActionAmendTreatment   Action = "AMEND_TREATMENT"
	ActionDeleteTreatment  Action = "DELETE_TREATMENT"
	ActionRestoreTreatment Action = "RESTORE_TREATMENT"

	ActionViewActivityLog Action = "VIEW_ACTIVITY_LOG"

	ActionInviteMembers     Action = "INVITE_MEMBERS"
	ActionUpdateMemberRole  Action = "UPDATE_MEMBER_ROLE"
	ActionRemoveMember      Action = "REMOVE_MEMBER"
	ActionUpdateMemberPerms Action = "UPDATE_MEMBER_PERMISSIONS"
	ActionRevokeInvitation  Action = "REVOKE_INVITATION"
	ActionLeaveOrganization Action = "LEAVE_ORGANIZATION"
)

// rule describe qué exige una acción además de una membresía activa.
// roles vacío = cualquier rol; capability 0 = sin flag.
type rule struct {
	roles      []orgs.Role
	capability orgs.Capability
}

var managers = []orgs.Role{orgs.RoleOwner, orgs.RoleAdmin}

var rules = map[Action]rule{
	ActionViewRecords: {},
	ActionViewMembers: {},

	ActionCreateClient:  {},
	ActionUpdateClient:  {},
	ActionDeleteClient:  {capability: orgs.CanDeleteClients},
	ActionRestoreClient: {capability: orgs.CanDeleteClients},

	ActionCreateAnimal:  {},
	ActionUpdateAnimal:  {},
	ActionDeleteAnimal:  {capability: orgs.CanDeleteAnimals},
	ActionRestoreAnimal: {capability: orgs.CanDeleteAnimals},

	ActionCreateTreatment:  {},
	ActionAmendTreatment:   {},
	ActionDeleteTreatment:  {capability: orgs.CanDeleteTreatments},
	ActionRestoreTreatment: {capability: orgs.CanDeleteTreatments},

	ActionViewActivityLog: {capability: orgs.CanViewActivityLog},

	ActionInviteMembers:     {roles: managers},
	ActionUpdateMemberRole:  {roles: managers},
	ActionRemoveMember:      {roles: managers},
	ActionRevokeInvitation:  {roles: managers},
	ActionUpdateMemberPerms: {roles: []orgs.Role{orgs.RoleOwner}},
	ActionLeaveOrganization: {},
}
