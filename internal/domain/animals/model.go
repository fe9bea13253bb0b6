package animals

import (
	"context"
	"errors"
	"time"

	"vet-practice-api/internal/domain/softdelete"
)

var (
	ErrNotFound       = errors.New("animal not found")
	ErrMicrochipTaken = errors.New("microchip already registered in organization")
)

type PatientType string

const (
	PatientSinglePet       PatientType = "SINGLE_PET"
	PatientSingleLivestock PatientType = "SINGLE_LIVESTOCK"
	PatientBatchLivestock  PatientType = "BATCH_LIVESTOCK"
)

func (p PatientType) Valid() bool {
	switch p {
	case PatientSinglePet, PatientSingleLivestock, PatientBatchLivestock:
		return true
	default:
		return false
	}
}

type Sex string

const (
	SexMale    Sex = "MALE"
	SexFemale  Sex = "FEMALE"
	SexUnknown Sex = "UNKNOWN"
)

type Animal struct {
	ID             string
	OrganizationID string
	ClientID       string

	Name            string
	Species         string
	Breed           string
	Sex             Sex
	Color           string
	DateOfBirth     *time.Time
	Weight          *float64
	MicrochipNumber *string
	Notes           string

	PatientType     PatientType
	BatchName       *string
	BatchSize       *int
	BatchIdentifier *string

	IsAlive      bool
	DateOfDeath  *time.Time
	CauseOfDeath *string

	softdelete.Marker

	CreatedByVetID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ListFilter struct {
	ClientID       string
	IncludeDeleted bool
}

type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, orgID, id string) (Animal, error)
	GetForUpdate(ctx context.Context, orgID, id string) (Animal, error)
	List(ctx context.Context, orgID string, f ListFilter) ([]Animal, error)
	// ListByClient devuelve todos los animales del cliente, borrados incluidos.
	ListByClient(ctx context.Context, orgID, clientID string) ([]Animal, error)
	// FindLiveByMicrochip busca entre animales no borrados de la organización.
	FindLiveByMicrochip(ctx context.Context, orgID, microchip string) (Animal, error)
}
