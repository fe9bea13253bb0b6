package permissions

import (
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/platform/apperr"
)

var (
	ErrNotOrgMember        = apperr.Forbidden("NOT_ORG_MEMBER", "you are not a member of this organization")
	ErrMembershipInactive  = apperr.Forbidden("MEMBERSHIP_NOT_ACTIVE", "your membership in this organization is not active")
	ErrInsufficientRole    = apperr.Forbidden("INSUFFICIENT_ROLE", "your role does not allow this action")
	ErrDeleteDenied        = apperr.Forbidden("DELETE_PERMISSION_DENIED", "you do not have permission to delete this kind of record")
	ErrActivityLogDenied   = apperr.Forbidden("ACTIVITY_LOG_ACCESS_DENIED", "you do not have permission to view the activity log")
	ErrUnknownAction       = apperr.Forbidden("UNKNOWN_ACTION", "action is not recognised")
	ErrCannotChangeOwner   = apperr.Forbidden("CANNOT_CHANGE_OWNER_ROLE", "the owner's role cannot be changed")
	ErrCannotAssignOwner   = apperr.Forbidden("CANNOT_ASSIGN_OWNER", "the OWNER role cannot be assigned")
	ErrCannotRemoveOwner   = apperr.Forbidden("CANNOT_REMOVE_OWNER", "the owner cannot be removed")
	ErrCannotEditOwnerPerm = apperr.Forbidden("CANNOT_MODIFY_OWNER_PERMISSIONS", "the owner's permissions cannot be modified")
	ErrOwnerCannotLeave    = apperr.Forbidden("OWNER_CANNOT_LEAVE", "the owner cannot leave the organization")
)

// Actor es lo que el resolver necesita saber del vet que actúa.
type Actor struct {
	VetID         string
	IsMasterAdmin bool
}

// Decision es el resultado del resolver: permitido, o denegado con un error tipado.
type Decision struct {
	Allowed bool
	Reason  *apperr.Error
}

func allow() Decision { return Decision{Allowed: true} }

func deny(e *apperr.Error) Decision { return Decision{Reason: e} }

// Err devuelve nil si está permitido.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason
}

// CanPerform resuelve en orden fijo:
//  1. master admin
//  2. membresía ausente / inactiva
//  3. rol (acciones restringidas por rol)
//  4. OWNER tiene todos los flags
//  5. flag de la acción
//
// No hace I/O: el caller trae la membresía (nil si no existe).
func CanPerform(actor Actor, m *orgs.Membership, action Action) Decision {
	if actor.IsMasterAdmin {
		return allow()
	}

	r, ok := rules[action]
	if !ok {
		return deny(ErrUnknownAction.WithDetails(map[string]any{"action": action}))
	}

	if m == nil {
		return deny(ErrNotOrgMember)
	}
	if !m.IsActive() {
		return deny(ErrMembershipInactive.WithDetails(map[string]any{"status": m.Status}))
	}

	if len(r.roles) > 0 && !hasRole(m.Role, r.roles) {
		return deny(ErrInsufficientRole.WithDetails(map[string]any{
			"acceptedRoles": roleNames(r.roles),
			"role":          m.Role,
		}))
	}

	if r.capability == 0 || m.IsOwner() {
		return allow()
	}

	if !m.Capabilities.Has(r.capability) {
		base := ErrDeleteDenied
		if r.capability == orgs.CanViewActivityLog {
			base = ErrActivityLogDenied
		}
		return deny(base.WithDetails(map[string]any{"permission": r.capability.String()}))
	}
	return allow()
}

// CheckRoleChange aplica las protecciones estructurales del OWNER. Vale para
// cualquiera, master admin incluido.
func CheckRoleChange(target orgs.Membership, newRole orgs.Role) error {
	if target.IsOwner() {
		return ErrCannotChangeOwner
	}
	if newRole == orgs.RoleOwner {
		return ErrCannotAssignOwner
	}
	return nil
}

func CheckRemoval(target orgs.Membership) error {
	if target.IsOwner() {
		return ErrCannotRemoveOwner
	}
	return nil
}

func CheckPermissionEdit(target orgs.Membership) error {
	if target.IsOwner() {
		return ErrCannotEditOwnerPerm
	}
	return nil
}

func CheckLeave(self orgs.Membership) error {
	if self.IsOwner() {
		return ErrOwnerCannotLeave
	}
	return nil
}

func hasRole(role orgs.Role, accepted []orgs.Role) bool {
	for _, a := range accepted {
		if a == role {
			return true
		}
	}
	return false
}

func roleNames(rs []orgs.Role) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, string(r))
	}
	return out
}
