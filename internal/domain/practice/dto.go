package practice

import (
	"encoding/json"
	"time"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/animals"
	"vet-practice-api/internal/domain/clients"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/softdelete"
	"vet-practice-api/internal/domain/treatments"
	"vet-practice-api/internal/domain/vets"

	"github.com/shopspring/decimal"
)

type vetResponse struct {
	ID            string              `json:"id"`
	Email         string              `json:"email"`
	Name          string              `json:"name"`
	Status        vets.ApprovalStatus `json:"status"`
	IsMasterAdmin bool                `json:"isMasterAdmin"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func toVetResponse(v vets.Vet) vetResponse {
	return vetResponse{
		ID:            v.ID,
		Email:         v.Email,
		Name:          v.Name,
		Status:        v.Status,
		IsMasterAdmin: v.IsMasterAdmin,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

type organizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"isActive"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func toOrganizationResponse(o orgs.Organization) organizationResponse {
	return organizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		Slug:      o.Slug,
		IsActive:  o.IsActive,
		CreatedBy: o.CreatedByVetID,
		CreatedAt: o.CreatedAt,
	}
}

type membershipResponse struct {
	ID             string                `json:"id"`
	OrganizationID string                `json:"organizationId"`
	VetID          string                `json:"vetId"`
	Role           orgs.Role             `json:"role"`
	Status         orgs.MembershipStatus `json:"status"`
	Permissions    map[string]bool       `json:"permissions"`
	JoinedAt       time.Time             `json:"joinedAt"`
}

func toMembershipResponse(m orgs.Membership) membershipResponse {
	return membershipResponse{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		VetID:          m.VetID,
		Role:           m.Role,
		Status:         m.Status,
		Permissions:    m.Capabilities.Flags(),
		JoinedAt:       m.JoinedAt,
	}
}

type invitationResponse struct {
	ID             string                `json:"id"`
	OrganizationID string                `json:"organizationId"`
	Email          string                `json:"email"`
	Role           orgs.Role             `json:"role"`
	Status         orgs.InvitationStatus `json:"status"`
	InvitedBy      string                `json:"invitedBy"`
	ExpiresAt      time.Time             `json:"expiresAt"`
	CreatedAt      time.Time             `json:"createdAt"`
}

func toInvitationResponse(i orgs.Invitation) invitationResponse {
	return invitationResponse{
		ID:             i.ID,
		OrganizationID: i.OrganizationID,
		Email:          i.Email,
		Role:           i.Role,
		Status:         i.Status,
		InvitedBy:      i.InvitedByVetID,
		ExpiresAt:      i.ExpiresAt,
		CreatedAt:      i.CreatedAt,
	}
}

// deletionFields es la parte común de soft delete en cada respuesta.
type deletionFields struct {
	IsDeleted      bool       `json:"isDeleted"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
	DeletedBy      *string    `json:"deletedBy,omitempty"`
	DeletionReason *string    `json:"deletionReason,omitempty"`
}

func toDeletionFields(m softdelete.Marker) deletionFields {
	return deletionFields{
		IsDeleted:      m.IsDeleted,
		DeletedAt:      m.DeletedAt,
		DeletedBy:      m.DeletedBy,
		DeletionReason: m.DeletionReason,
	}
}

type clientResponse struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	Notes          string `json:"notes,omitempty"`
	deletionFields
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toClientResponse(c clients.Client) clientResponse {
	return clientResponse{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		Notes:          c.Notes,
		deletionFields: toDeletionFields(c.Marker),
		CreatedBy:      c.CreatedByVetID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

type animalResponse struct {
	ID              string              `json:"id"`
	OrganizationID  string              `json:"organizationId"`
	ClientID        string              `json:"clientId"`
	Name            string              `json:"name"`
	Species         string              `json:"species"`
	Breed           string              `json:"breed,omitempty"`
	Sex             animals.Sex         `json:"sex"`
	Color           string              `json:"color,omitempty"`
	DateOfBirth     *string             `json:"dateOfBirth,omitempty"`
	Weight          *float64            `json:"weight,omitempty"`
	MicrochipNumber *string             `json:"microchipNumber,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	PatientType     animals.PatientType `json:"patientType"`
	BatchName       *string             `json:"batchName,omitempty"`
	BatchSize       *int                `json:"batchSize,omitempty"`
	BatchIdentifier *string             `json:"batchIdentifier,omitempty"`
	IsAlive         bool                `json:"isAlive"`
	DateOfDeath     *string             `json:"dateOfDeath,omitempty"`
	CauseOfDeath    *string             `json:"causeOfDeath,omitempty"`
	deletionFields
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func toAnimalResponse(a animals.Animal) animalResponse {
	return animalResponse{
		ID:              a.ID,
		OrganizationID:  a.OrganizationID,
		ClientID:        a.ClientID,
		Name:            a.Name,
		Species:         a.Species,
		Breed:           a.Breed,
		Sex:             a.Sex,
		Color:           a.Color,
		DateOfBirth:     dateString(a.DateOfBirth),
		Weight:          a.Weight,
		MicrochipNumber: a.MicrochipNumber,
		Notes:           a.Notes,
		PatientType:     a.PatientType,
		BatchName:       a.BatchName,
		BatchSize:       a.BatchSize,
		BatchIdentifier: a.BatchIdentifier,
		IsAlive:         a.IsAlive,
		DateOfDeath:     dateString(a.DateOfDeath),
		CauseOfDeath:    a.CauseOfDeath,
		deletionFields:  toDeletionFields(a.Marker),
		CreatedBy:       a.CreatedByVetID,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type vitalsDTO struct {
	TemperatureC    *float64 `json:"temperatureC,omitempty"`
	HeartRate       *int     `json:"heartRate,omitempty"`
	RespiratoryRate *int     `json:"respiratoryRate,omitempty"`
	WeightKg        *float64 `json:"weightKg,omitempty"`
}

type treatmentResponse struct {
	ID              string                   `json:"id"`
	OrganizationID  string                   `json:"organizationId"`
	AnimalID        string                   `json:"animalId"`
	VetID           string                   `json:"vetId"`
	Version         int                      `json:"version"`
	ParentRecordID  *string                  `json:"parentRecordId,omitempty"`
	IsLatestVersion bool                     `json:"isLatestVersion"`
	VisitDate       time.Time                `json:"visitDate"`
	ChiefComplaint  string                   `json:"chiefComplaint,omitempty"`
	History         string                   `json:"history,omitempty"`
	Diagnosis       string                   `json:"diagnosis,omitempty"`
	TreatmentGiven  string                   `json:"treatmentGiven,omitempty"`
	Prescriptions   string                   `json:"prescriptions,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	Vitals          vitalsDTO                `json:"vitals"`
	Amount          *decimal.Decimal         `json:"amount,omitempty"`
	PaymentStatus   treatments.PaymentStatus `json:"paymentStatus"`
	AmountPaid      *decimal.Decimal         `json:"amountPaid,omitempty"`
	PaidAt          *time.Time               `json:"paidAt,omitempty"`
	IsScheduled     bool                     `json:"isScheduled"`
	ScheduledFor    *time.Time               `json:"scheduledFor,omitempty"`
	FollowUpDate    *time.Time               `json:"followUpDate,omitempty"`
	deletionFields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toTreatmentResponse(r treatments.Record) treatmentResponse {
	return treatmentResponse{
		ID:              r.ID,
		OrganizationID:  r.OrganizationID,
		AnimalID:        r.AnimalID,
		VetID:           r.VetID,
		Version:         r.Version,
		ParentRecordID:  r.ParentRecordID,
		IsLatestVersion: r.IsLatestVersion,
		VisitDate:       r.VisitDate,
		ChiefComplaint:  r.ChiefComplaint,
		History:         r.History,
		Diagnosis:       r.Diagnosis,
		TreatmentGiven:  r.TreatmentGiven,
		Prescriptions:   r.Prescriptions,
		Notes:           r.Notes,
		Vitals: vitalsDTO{
			TemperatureC:    r.TemperatureC,
			HeartRate:       r.HeartRate,
			RespiratoryRate: r.RespiratoryRate,
			WeightKg:        r.WeightKg,
		},
		Amount:         r.Amount,
		PaymentStatus:  r.PaymentStatus,
		AmountPaid:     r.AmountPaid,
		PaidAt:         r.PaidAt,
		IsScheduled:    r.IsScheduled,
		ScheduledFor:   r.ScheduledFor,
		FollowUpDate:   r.FollowUpDate,
		deletionFields: toDeletionFields(r.Marker),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type cascadedCounts struct {
	Animals    *int `json:"animals,omitempty"`
	Treatments *int `json:"treatments,omitempty"`
}

type deleteResponse struct {
	Message             string          `json:"message"`
	DeletedOrRestoredID string          `json:"deletedOrRestoredId"`
	CascadedCounts      *cascadedCounts `json:"cascadedCounts,omitempty"`
}

// toDeleteResponse incluye solo los contadores que aplican al tipo borrado.
func toDeleteResponse(kind softdelete.Kind, res DeleteResult) deleteResponse {
	out := deleteResponse{Message: res.Message, DeletedOrRestoredID: res.ID}
	switch kind {
	case softdelete.KindClient:
		a, t := res.Counts.Animals, res.Counts.Treatments
		out.CascadedCounts = &cascadedCounts{Animals: &a, Treatments: &t}
	case softdelete.KindAnimal:
		t := res.Counts.Treatments
		out.CascadedCounts = &cascadedCounts{Treatments: &t}
	}
	return out
}

type activityResponse struct {
	ID          string    `json:"id"`
	VetID       string    `json:"vetId"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entityType"`
	EntityID    string    `json:"entityId"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toActivityResponse(e activity.ActivityLog) activityResponse {
	return activityResponse{
		ID:          e.ID,
		VetID:       e.VetID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

type auditResponse struct {
	ID             string          `json:"id"`
	VetID          string          `json:"vetId"`
	OrganizationID *string         `json:"organizationId,omitempty"`
	Action         string          `json:"action"`
	EntityType     string          `json:"entityType"`
	EntityID       string          `json:"entityId"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func toAuditResponse(e activity.AuditLog) auditResponse {
	return auditResponse{
		ID:             e.ID,
		VetID:          e.VetID,
		OrganizationID: e.OrganizationID,
		Action:         e.Action,
		EntityType:     e.EntityType,
		EntityID:       e.EntityID,
		Metadata:       e.Metadata,
		CreatedAt:      e.CreatedAt,
	}
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
