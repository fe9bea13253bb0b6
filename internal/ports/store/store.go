package store

import (
	"context"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/animals"
	"vet-practice-api/internal/domain/clients"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/treatments"
	"vet-practice-api/internal/domain/vets"
)

// Tx expone los repos ligados a una transacción abierta.
type Tx interface {
	Vets() vets.Repository
	Orgs() orgs.Repository
	Clients() clients.Repository
	Animals() animals.Repository
	Treatments() treatments.Repository
}

// Store es la unidad de trabajo. RunInTx confirma si fn devuelve nil y
// descarta todo si devuelve error.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	// Fuera de transacción: identidad y trazas (best-effort).
	Vets() vets.Repository
	Activity() activity.Repository

	Ping(ctx context.Context) error
}
