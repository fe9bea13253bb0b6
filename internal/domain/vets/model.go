package vets

import "time"

type ApprovalStatus string

const (
	StatusPendingApproval ApprovalStatus = "PENDING_APPROVAL"
	StatusApproved        ApprovalStatus = "APPROVED"
	StatusRejected        ApprovalStatus = "REJECTED"
	StatusSuspended       ApprovalStatus = "SUSPENDED"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusRejected, StatusSuspended:
		return true
	default:
		return false
	}
}

// Vet es la identidad de plataforma. Se crea la primera vez que el proveedor
// externo verifica un token con un subject desconocido.
type Vet struct {
	ID            string
	AuthSubject   string
	Email         string
	Name          string
	Status        ApprovalStatus
	IsMasterAdmin bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// transitions: solo hacia adelante, salvo SUSPENDED <-> APPROVED.
var transitions = map[ApprovalStatus][]ApprovalStatus{
	StatusPendingApproval: {StatusApproved, StatusRejected},
	StatusApproved:        {StatusSuspended},
	StatusSuspended:       {StatusApproved},
}

func CanTransition(from, to ApprovalStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
