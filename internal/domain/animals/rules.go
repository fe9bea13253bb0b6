package animals

import (
	"strings"
	"time"

	"vet-practice-api/internal/domain/patch"
	"vet-practice-api/internal/platform/apperr"
)

var (
	ErrBatchFieldsRequired = apperr.Precondition("BATCH_FIELDS_REQUIRED", "batchName, batchSize and batchIdentifier are required for BATCH_LIVESTOCK")
	ErrAlreadyDeceased     = apperr.Precondition("ALREADY_DECEASED", "animal is already marked as deceased")
	ErrInvalidPatientType  = apperr.Invalid("INVALID_PATIENT_TYPE", "unknown patient type")
	ErrNameRequired        = apperr.Invalid("NAME_REQUIRED", "name and species are required")

	ErrAnimalNotFound  = apperr.NotFound("ANIMAL_NOT_FOUND", "animal not found in this organization")
	ErrAnimalDeleted   = apperr.Precondition("ANIMAL_DELETED", "animal is deleted")
	ErrMicrochipExists = apperr.Conflict("MICROCHIP_EXISTS", "another animal in this organization already has this microchip")
)

type Input struct {
	ClientID        string
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
}

type Patch struct {
	Name            patch.Field[string]
	Species         patch.Field[string]
	Breed           patch.Field[string]
	Sex             patch.Field[Sex]
	Color           patch.Field[string]
	DateOfBirth     patch.Field[time.Time]
	Weight          patch.Field[float64]
	MicrochipNumber patch.Field[string]
	Notes           patch.Field[string]

	PatientType     patch.Field[PatientType]
	BatchName       patch.Field[string]
	BatchSize       patch.Field[int]
	BatchIdentifier patch.Field[string]
}

// Build arma el Animal a partir del input; ID, org y auditoría los pone el caller.
func (in Input) Build() (Animal, error) {
	a := Animal{
		ClientID:        strings.TrimSpace(in.ClientID),
		Name:            strings.TrimSpace(in.Name),
		Species:         strings.TrimSpace(in.Species),
		Breed:           strings.TrimSpace(in.Breed),
		Sex:             in.Sex,
		Color:           strings.TrimSpace(in.Color),
		DateOfBirth:     in.DateOfBirth,
		Weight:          in.Weight,
		MicrochipNumber: NormalizeMicrochip(in.MicrochipNumber),
		Notes:           in.Notes,
		PatientType:     in.PatientType,
		BatchName:       in.BatchName,
		BatchSize:       in.BatchSize,
		BatchIdentifier: in.BatchIdentifier,
		IsAlive:         true,
	}
	if a.PatientType == "" {
		a.PatientType = PatientSinglePet
	}
	if a.Sex == "" {
		a.Sex = SexUnknown
	}
	return a, Validate(a)
}

func (p Patch) ApplyTo(a *Animal) error {
	p.Name.Apply(&a.Name)
	p.Species.Apply(&a.Species)
	p.Breed.Apply(&a.Breed)
	p.Sex.Apply(&a.Sex)
	p.Color.Apply(&a.Color)
	p.DateOfBirth.ApplyPtr(&a.DateOfBirth)
	p.Weight.ApplyPtr(&a.Weight)
	p.MicrochipNumber.ApplyPtr(&a.MicrochipNumber)
	p.Notes.Apply(&a.Notes)
	p.PatientType.Apply(&a.PatientType)
	p.BatchName.ApplyPtr(&a.BatchName)
	p.BatchSize.ApplyPtr(&a.BatchSize)
	p.BatchIdentifier.ApplyPtr(&a.BatchIdentifier)

	a.MicrochipNumber = NormalizeMicrochip(a.MicrochipNumber)
	if a.Sex == "" {
		a.Sex = SexUnknown
	}
	return Validate(*a)
}

// Validate aplica las reglas de forma del animal.
func Validate(a Animal) error {
	if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Species) == "" {
		return ErrNameRequired
	}
	if !a.PatientType.Valid() {
		return ErrInvalidPatientType
	}
	if a.PatientType == PatientBatchLivestock {
		if isBlank(a.BatchName) || isBlank(a.BatchIdentifier) || a.BatchSize == nil || *a.BatchSize <= 0 {
			return ErrBatchFieldsRequired
		}
	}
	return nil
}

// MarkDeceased registra el fallecimiento. Solo una vez.
func MarkDeceased(a *Animal, dateOfDeath time.Time, cause string) error {
	if !a.IsAlive {
		return ErrAlreadyDeceased
	}
	a.IsAlive = false
	a.DateOfDeath = &dateOfDeath
	if cause = strings.TrimSpace(cause); cause != "" {
		a.CauseOfDeath = &cause
	}
	return nil
}

// NormalizeMicrochip recorta espacios y pasa a mayúsculas, así "mc-1" y
// "MC-1" chocan en la unicidad por organización. Vacío equivale a sin microchip.
func NormalizeMicrochip(m *string) *string {
	if m == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*m))
	if v == "" {
		return nil
	}
	return &v
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
