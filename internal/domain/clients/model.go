package clients

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-practice-api/internal/domain/softdelete"
	"vet-practice-api/internal/platform/apperr"
)

var (
	ErrNotFound     = errors.New("client not found")
	ErrInvalidInput = errors.New("invalid client input")
)

// Client es el dueño de los animales dentro de una organización.
type Client struct {
	ID             string
	OrganizationID string

	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Notes     string

	softdelete.Marker

	CreatedByVetID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ListFilter struct {
	IncludeDeleted bool
	Search         string
}

type Repository interface {
	Create(ctx context.Context, c Client) error
	Update(ctx context.Context, c Client) error
	GetByID(ctx context.Context, orgID, id string) (Client, error)
	// GetForUpdate toma lock de fila cuando el backend lo soporta.
	GetForUpdate(ctx context.Context, orgID, id string) (Client, error)
	List(ctx context.Context, orgID string, f ListFilter) ([]Client, error)
}

type Input struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Notes     string
}

// Patch: nil = no tocar.
type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Address   *string
	Notes     *string
}

func (in Input) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return ErrInvalidInput
	}
	return nil
}

func (p Patch) ApplyTo(c *Client) error {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&c.FirstName, p.FirstName)
	set(&c.LastName, p.LastName)
	set(&c.Email, p.Email)
	set(&c.Phone, p.Phone)
	set(&c.Address, p.Address)
	set(&c.Notes, p.Notes)

	if c.FirstName == "" || c.LastName == "" {
		return ErrInvalidInput
	}
	return nil
}

func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

var (
	ErrClientNotFound = apperr.NotFound("CLIENT_NOT_FOUND", "client not found in this organization")
	ErrClientDeleted  = apperr.Precondition("CLIENT_DELETED", "client is deleted")
)
