package softdelete

import (
	"fmt"
	"time"
)

// Kind identifica el tipo de fila en la jerarquía Client -> Animal -> TreatmentRecord.
type Kind string

const (
	KindClient    Kind = "client"
	KindAnimal    Kind = "animal"
	KindTreatment Kind = "treatment"
)

// Marker es la forma común del soft delete. Restaurar limpia todos los campos.
type Marker struct {
	IsDeleted      bool
	DeletedAt      *time.Time
	DeletedBy      *string
	DeletionReason *string
}

func (m *Marker) Mark(at time.Time, by, reason string) {
	m.IsDeleted = true
	m.DeletedAt = &at
	m.DeletedBy = &by
	m.DeletionReason = &reason
}

func (m *Marker) Clear() {
	m.IsDeleted = false
	m.DeletedAt = nil
	m.DeletedBy = nil
	m.DeletionReason = nil
}

// CascadeReason es el motivo que reciben los descendientes borrados en cascada.
func CascadeReason(root Kind, reason string) string {
	return fmt.Sprintf("Cascade delete from %s: %s", root, reason)
}
