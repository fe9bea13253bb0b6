package treatments

import (
	"context"
	"errors"
	"time"

	"vet-practice-api/internal/domain/softdelete"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("treatment record not found")
	// ErrStaleLatest lo devuelve el repo cuando el flip de latest no encuentra la fila aún marcada.
	ErrStaleLatest = errors.New("treatment record is no longer the latest version")
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentWaived  PaymentStatus = "WAIVED"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentWaived:
		return true
	default:
		return false
	}
}

type Vitals struct {
	TemperatureC    *float64
	HeartRate       *int
	RespiratoryRate *int
	WeightKg        *float64
}

// Record es una versión inmutable de un tratamiento. La cadena se identifica
// por el ID de la versión 1.
type Record struct {
	ID             string
	OrganizationID string
	AnimalID       string
	VetID          string

	Version         int
	ParentRecordID  *string
	IsLatestVersion bool

	VisitDate      time.Time
	ChiefComplaint string
	History        string
	Diagnosis      string
	TreatmentGiven string
	Prescriptions  string
	Notes          string
	Vitals

	Amount        *decimal.Decimal
	PaymentStatus PaymentStatus
	AmountPaid    *decimal.Decimal
	PaidAt        *time.Time

	IsScheduled  bool
	ScheduledFor *time.Time
	FollowUpDate *time.Time

	softdelete.Marker

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListFilter struct {
	AnimalID       string
	OnlyLatest     bool
	IncludeDeleted bool
	Scheduled      *bool
}

type Repository interface {
	Create(ctx context.Context, r Record) error
	Update(ctx context.Context, r Record) error
	GetByID(ctx context.Context, orgID, id string) (Record, error)
	GetForUpdate(ctx context.Context, orgID, id string) (Record, error)
	// MarkSuperseded pasa IsLatestVersion a false solo si sigue en true; si no, ErrStaleLatest.
	MarkSuperseded(ctx context.Context, orgID, id string, at time.Time) error
	// ListChildren devuelve las versiones cuyo parent es id.
	ListChildren(ctx context.Context, orgID, id string) ([]Record, error)
	// ListByAnimal devuelve todas las versiones del animal, borradas incluidas.
	ListByAnimal(ctx context.Context, orgID, animalID string) ([]Record, error)
	List(ctx context.Context, orgID string, f ListFilter) ([]Record, error)
}
