package orgs

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("organization not found")
	ErrSlugTaken          = errors.New("organization slug already taken")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrMembershipExists   = errors.New("membership already exists")
	ErrInvitationNotFound = errors.New("invitation not found")
)

type Repository interface {
	CreateOrganization(ctx context.Context, o Organization) error
	GetOrganization(ctx context.Context, id string) (Organization, error)
	ListOrganizationsByVet(ctx context.Context, vetID string) ([]Organization, error)

	CreateMembership(ctx context.Context, m Membership) error
	UpdateMembership(ctx context.Context, m Membership) error
	GetMembership(ctx context.Context, id string) (Membership, error)
	// FindMembership busca la fila (org, vet) sin importar su status.
	FindMembership(ctx context.Context, orgID, vetID string) (Membership, error)
	ListMemberships(ctx context.Context, orgID string) ([]Membership, error)

	CreateInvitation(ctx context.Context, inv Invitation) error
	UpdateInvitation(ctx context.Context, inv Invitation) error
	GetInvitation(ctx context.Context, id string) (Invitation, error)
	ListInvitations(ctx context.Context, orgID string) ([]Invitation, error)
	ListInvitationsByEmail(ctx context.Context, email string) ([]Invitation, error)
}
