package orgs

import "time"

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "ACTIVE"
	MembershipRemoved MembershipStatus = "REMOVED"
	MembershipLeft    MembershipStatus = "LEFT"
)

type Organization struct {
	ID             string
	Name           string
	Slug           string
	CreatedByVetID string
	IsActive       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Membership struct {
	ID             string
	OrganizationID string
	VetID          string
	Role           Role
	Status         MembershipStatus
	Capabilities   Capabilities

	JoinedAt  time.Time
	UpdatedAt time.Time
}

func (m Membership) IsActive() bool { return m.Status == MembershipActive }

func (m Membership) IsOwner() bool { return m.Role == RoleOwner }

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRevoked  InvitationStatus = "REVOKED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

const InvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID             string
	OrganizationID string
	Email          string
	Role           Role
	InvitedByVetID string
	Status         InvitationStatus
	ExpiresAt      time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPending considera expiradas las invitaciones pendientes cuyo plazo venció.
func (i Invitation) IsPending(now time.Time) bool {
	return i.Status == InvitationPending && now.Before(i.ExpiresAt)
}
