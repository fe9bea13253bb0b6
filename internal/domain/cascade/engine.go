package cascade

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-practice-api/internal/domain/animals"
	"vet-practice-api/internal/domain/clients"
	"vet-practice-api/internal/domain/softdelete"
	"vet-practice-api/internal/domain/treatments"
	"vet-practice-api/internal/platform/apperr"
)

var (
	ErrReasonRequired = apperr.Invalid("REASON_REQUIRED", "a deletion reason is required")
	ErrAlreadyDeleted = apperr.Conflict("ALREADY_DELETED", "record is already deleted")
	ErrNotDeleted     = apperr.Precondition("NOT_DELETED", "record is not deleted")
	ErrParentDeleted  = apperr.Precondition("PARENT_DELETED", "parent record is deleted; restore it first")
)

// Repos es el conjunto de repos que el engine necesita dentro de una transacción.
type Repos interface {
	Clients() clients.Repository
	Animals() animals.Repository
	Treatments() treatments.Repository
}

// Counts son los descendientes borrados en cascada (la raíz no cuenta).
type Counts struct {
	Animals    int
	Treatments int
}

// Engine borra y restaura sobre la jerarquía Client -> Animal -> TreatmentRecord.
// Debe correr dentro de la transacción del caller: valida todo antes de escribir
// y toma locks de arriba hacia abajo (client, animal, treatment).
type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

func (e *Engine) DeleteClient(ctx context.Context, r Repos, orgID, clientID, vetID, reason string) (clients.Client, Counts, error) {
	if err := requireReason(reason); err != nil {
		return clients.Client{}, Counts{}, err
	}

	c, err := r.Clients().GetForUpdate(ctx, orgID, clientID)
	if err != nil {
		return clients.Client{}, Counts{}, apperr.Translate(err, clients.ErrNotFound, clients.ErrClientNotFound)
	}
	if c.IsDeleted {
		return clients.Client{}, Counts{}, alreadyDeleted(softdelete.KindClient, c.ID)
	}

	now := e.now()
	c.Mark(now, vetID, reason)
	c.UpdatedAt = now
	if err := r.Clients().Update(ctx, c); err != nil {
		return clients.Client{}, Counts{}, err
	}

	childReason := softdelete.CascadeReason(softdelete.KindClient, reason)
	var counts Counts

	list, err := r.Animals().ListByClient(ctx, orgID, c.ID)
	if err != nil {
		return clients.Client{}, Counts{}, err
	}
	for _, peek := range list {
		if peek.IsDeleted {
			continue
		}
		a, err := r.Animals().GetForUpdate(ctx, orgID, peek.ID)
		if err != nil {
			return clients.Client{}, Counts{}, err
		}
		if a.IsDeleted {
			continue
		}
		n, err := e.markTreatments(ctx, r, orgID, a.ID, vetID, childReason, now)
		if err != nil {
			return clients.Client{}, Counts{}, err
		}
		a.Mark(now, vetID, childReason)
		a.UpdatedAt = now
		if err := r.Animals().Update(ctx, a); err != nil {
			return clients.Client{}, Counts{}, err
		}
		counts.Animals++
		counts.Treatments += n
	}
	return c, counts, nil
}

func (e *Engine) DeleteAnimal(ctx context.Context, r Repos, orgID, animalID, vetID, reason string) (animals.Animal, Counts, error) {
	if err := requireReason(reason); err != nil {
		return animals.Animal{}, Counts{}, err
	}

	a, parent, err := e.lockAnimal(ctx, r, orgID, animalID)
	if err != nil {
		return animals.Animal{}, Counts{}, err
	}
	if a.IsDeleted {
		return animals.Animal{}, Counts{}, alreadyDeleted(softdelete.KindAnimal, a.ID)
	}
	if parent.IsDeleted {
		return animals.Animal{}, Counts{}, parentDeleted(softdelete.KindClient, parent.ID)
	}

	now := e.now()
	n, err := e.markTreatments(ctx, r, orgID, a.ID, vetID, softdelete.CascadeReason(softdelete.KindAnimal, reason), now)
	if err != nil {
		return animals.Animal{}, Counts{}, err
	}
	a.Mark(now, vetID, reason)
	a.UpdatedAt = now
	if err := r.Animals().Update(ctx, a); err != nil {
		return animals.Animal{}, Counts{}, err
	}
	return a, Counts{Treatments: n}, nil
}

// DeleteTreatment borra solo el registro indicado; no tiene descendientes.
func (e *Engine) DeleteTreatment(ctx context.Context, r Repos, orgID, recordID, vetID, reason string) (treatments.Record, error) {
	if err := requireReason(reason); err != nil {
		return treatments.Record{}, err
	}

	rec, animal, err := e.lockTreatment(ctx, r, orgID, recordID)
	if err != nil {
		return treatments.Record{}, err
	}
	if rec.IsDeleted {
		return treatments.Record{}, alreadyDeleted(softdelete.KindTreatment, rec.ID)
	}
	if animal.IsDeleted {
		return treatments.Record{}, parentDeleted(softdelete.KindAnimal, animal.ID)
	}

	now := e.now()
	rec.Mark(now, vetID, reason)
	rec.UpdatedAt = now
	if err := r.Treatments().Update(ctx, rec); err != nil {
		return treatments.Record{}, err
	}
	return rec, nil
}

// RestoreClient restaura solo el cliente; sus animales quedan como estén.
func (e *Engine) RestoreClient(ctx context.Context, r Repos, orgID, clientID string) (clients.Client, error) {
	c, err := r.Clients().GetForUpdate(ctx, orgID, clientID)
	if err != nil {
		return clients.Client{}, apperr.Translate(err, clients.ErrNotFound, clients.ErrClientNotFound)
	}
	if !c.IsDeleted {
		return clients.Client{}, notDeleted(softdelete.KindClient, c.ID)
	}

	c.Clear()
	c.UpdatedAt = e.now()
	if err := r.Clients().Update(ctx, c); err != nil {
		return clients.Client{}, err
	}
	return c, nil
}

// RestoreAnimal exige cliente vivo y revalida el microchip contra los animales vivos.
func (e *Engine) RestoreAnimal(ctx context.Context, r Repos, orgID, animalID string) (animals.Animal, error) {
	a, parent, err := e.lockAnimal(ctx, r, orgID, animalID)
	if err != nil {
		return animals.Animal{}, err
	}
	if !a.IsDeleted {
		return animals.Animal{}, notDeleted(softdelete.KindAnimal, a.ID)
	}
	if parent.IsDeleted {
		return animals.Animal{}, parentDeleted(softdelete.KindClient, parent.ID)
	}
	if a.MicrochipNumber != nil {
		other, err := r.Animals().FindLiveByMicrochip(ctx, orgID, *a.MicrochipNumber)
		switch {
		case err == nil && other.ID != a.ID:
			return animals.Animal{}, animals.ErrMicrochipExists.WithDetails(map[string]any{"microchipNumber": *a.MicrochipNumber})
		case err != nil && !errors.Is(err, animals.ErrNotFound):
			return animals.Animal{}, err
		}
	}

	a.Clear()
	a.UpdatedAt = e.now()
	if err := r.Animals().Update(ctx, a); err != nil {
		return animals.Animal{}, err
	}
	return a, nil
}

func (e *Engine) RestoreTreatment(ctx context.Context, r Repos, orgID, recordID string) (treatments.Record, error) {
	rec, animal, err := e.lockTreatment(ctx, r, orgID, recordID)
	if err != nil {
		return treatments.Record{}, err
	}
	if !rec.IsDeleted {
		return treatments.Record{}, notDeleted(softdelete.KindTreatment, rec.ID)
	}
	if animal.IsDeleted {
		return treatments.Record{}, parentDeleted(softdelete.KindAnimal, animal.ID)
	}

	rec.Clear()
	rec.UpdatedAt = e.now()
	if err := r.Treatments().Update(ctx, rec); err != nil {
		return treatments.Record{}, err
	}
	return rec, nil
}

func (e *Engine) markTreatments(ctx context.Context, r Repos, orgID, animalID, vetID, reason string, now time.Time) (int, error) {
	list, err := r.Treatments().ListByAnimal(ctx, orgID, animalID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range list {
		if t.IsDeleted {
			continue
		}
		t.Mark(now, vetID, reason)
		t.UpdatedAt = now
		if err := r.Treatments().Update(ctx, t); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// lockAnimal bloquea cliente y luego animal.
func (e *Engine) lockAnimal(ctx context.Context, r Repos, orgID, animalID string) (animals.Animal, clients.Client, error) {
	peek, err := r.Animals().GetByID(ctx, orgID, animalID)
	if err != nil {
		return animals.Animal{}, clients.Client{}, apperr.Translate(err, animals.ErrNotFound, animals.ErrAnimalNotFound)
	}
	parent, err := r.Clients().GetForUpdate(ctx, orgID, peek.ClientID)
	if err != nil {
		return animals.Animal{}, clients.Client{}, apperr.Translate(err, clients.ErrNotFound, clients.ErrClientNotFound)
	}
	a, err := r.Animals().GetForUpdate(ctx, orgID, animalID)
	if err != nil {
		return animals.Animal{}, clients.Client{}, apperr.Translate(err, animals.ErrNotFound, animals.ErrAnimalNotFound)
	}
	return a, parent, nil
}

// lockTreatment bloquea animal y luego el registro.
func (e *Engine) lockTreatment(ctx context.Context, r Repos, orgID, recordID string) (treatments.Record, animals.Animal, error) {
	peek, err := r.Treatments().GetByID(ctx, orgID, recordID)
	if err != nil {
		return treatments.Record{}, animals.Animal{}, apperr.Translate(err, treatments.ErrNotFound, treatments.ErrTreatmentNotFound)
	}
	animal, err := r.Animals().GetForUpdate(ctx, orgID, peek.AnimalID)
	if err != nil {
		return treatments.Record{}, animals.Animal{}, apperr.Translate(err, animals.ErrNotFound, animals.ErrAnimalNotFound)
	}
	rec, err := r.Treatments().GetForUpdate(ctx, orgID, recordID)
	if err != nil {
		return treatments.Record{}, animals.Animal{}, apperr.Translate(err, treatments.ErrNotFound, treatments.ErrTreatmentNotFound)
	}
	return rec, animal, nil
}

func requireReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

func alreadyDeleted(kind softdelete.Kind, id string) error {
	return ErrAlreadyDeleted.WithDetails(map[string]any{"kind": kind, "id": id})
}

func notDeleted(kind softdelete.Kind, id string) error {
	return ErrNotDeleted.WithDetails(map[string]any{"kind": kind, "id": id})
}

func parentDeleted(kind softdelete.Kind, id string) error {
	return ErrParentDeleted.WithDetails(map[string]any{"parentKind": kind, "parentId": id})
}
