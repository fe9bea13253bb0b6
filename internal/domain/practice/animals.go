package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/animals"
	"vet-practice-api/internal/domain/clients"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/permissions"
	"vet-practice-api/internal/domain/softdelete"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/platform/apperr"
	"vet-practice-api/internal/ports/store"

	"github.com/google/uuid"
)

var ErrDeathDateRequired = apperr.Invalid("DATE_OF_DEATH_REQUIRED", "dateOfDeath is required")

// liveClient bloquea el cliente y exige que no esté borrado.
func liveClient(ctx context.Context, tx store.Tx, orgID, clientID string) (clients.Client, error) {
	c, err := tx.Clients().GetForUpdate(ctx, orgID, clientID)
	if err != nil {
		return clients.Client{}, apperr.Translate(err, clients.ErrNotFound, clients.ErrClientNotFound)
	}
	if c.IsDeleted {
		return clients.Client{}, clients.ErrClientDeleted.WithDetails(map[string]any{"clientId": c.ID})
	}
	return c, nil
}

// checkMicrochip falla si otro animal vivo de la organización ya usa el chip.
func checkMicrochip(ctx context.Context, tx store.Tx, orgID string, a animals.Animal) error {
	if a.MicrochipNumber == nil {
		return nil
	}
	other, err := tx.Animals().FindLiveByMicrochip(ctx, orgID, *a.MicrochipNumber)
	switch {
	case errors.Is(err, animals.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != a.ID:
		return animals.ErrMicrochipExists.WithDetails(map[string]any{"microchipNumber": *a.MicrochipNumber})
	}
	return nil
}

func microchipErr(err error, a animals.Animal) error {
	if errors.Is(err, animals.ErrMicrochipTaken) && a.MicrochipNumber != nil {
		return animals.ErrMicrochipExists.WithDetails(map[string]any{"microchipNumber": *a.MicrochipNumber})
	}
	return err
}

func (s *Service) CreateAnimal(ctx context.Context, actor vets.Vet, orgID string, in animals.Input) (animals.Animal, error) {
	var out animals.Animal
	err := s.mutate(ctx, actor, orgID, permissions.ActionCreateAnimal, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		a, err := in.Build()
		if err != nil {
			return activity.Entry{}, err
		}
		if _, err := liveClient(ctx, tx, orgID, a.ClientID); err != nil {
			return activity.Entry{}, err
		}
		if err := checkMicrochip(ctx, tx, orgID, a); err != nil {
			return activity.Entry{}, err
		}

		now := s.now()
		a.ID = uuid.NewString()
		a.OrganizationID = orgID
		a.CreatedByVetID = actor.ID
		a.CreatedAt = now
		a.UpdatedAt = now
		if err := tx.Animals().Create(ctx, a); err != nil {
			return activity.Entry{}, microchipErr(err, a)
		}
		out = a
		return activity.Entry{
			Action:      "ANIMAL_CREATED",
			EntityType:  string(softdelete.KindAnimal),
			EntityID:    a.ID,
			Description: fmt.Sprintf("Registered %s (%s)", a.Name, a.Species),
			Metadata:    map[string]any{"clientId": a.ClientID, "patientType": a.PatientType},
		}, nil
	})
	return out, err
}

// lockLiveAnimal bloquea cliente y animal en ese orden y exige ambos vivos.
func lockLiveAnimal(ctx context.Context, tx store.Tx, orgID, animalID string) (animals.Animal, error) {
	peek, err := tx.Animals().GetByID(ctx, orgID, animalID)
	if err != nil {
		return animals.Animal{}, apperr.Translate(err, animals.ErrNotFound, animals.ErrAnimalNotFound)
	}
	if _, err := liveClient(ctx, tx, orgID, peek.ClientID); err != nil {
		return animals.Animal{}, err
	}
	a, err := tx.Animals().GetForUpdate(ctx, orgID, animalID)
	if err != nil {
		return animals.Animal{}, apperr.Translate(err, animals.ErrNotFound, animals.ErrAnimalNotFound)
	}
	if a.IsDeleted {
		return animals.Animal{}, animals.ErrAnimalDeleted.WithDetails(map[string]any{"animalId": a.ID})
	}
	return a, nil
}

func (s *Service) UpdateAnimal(ctx context.Context, actor vets.Vet, orgID, animalID string, p animals.Patch) (animals.Animal, error) {
	var out animals.Animal
	err := s.mutate(ctx, actor, orgID, permissions.ActionUpdateAnimal, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		a, err := lockLiveAnimal(ctx, tx, orgID, animalID)
		if err != nil {
			return activity.Entry{}, err
		}
		if err := p.ApplyTo(&a); err != nil {
			return activity.Entry{}, err
		}
		if err := checkMicrochip(ctx, tx, orgID, a); err != nil {
			return activity.Entry{}, err
		}
		a.UpdatedAt = s.now()
		if err := tx.Animals().Update(ctx, a); err != nil {
			return activity.Entry{}, microchipErr(err, a)
		}
		out = a
		return activity.Entry{
			Action:      "ANIMAL_UPDATED",
			EntityType:  string(softdelete.KindAnimal),
			EntityID:    a.ID,
			Description: fmt.Sprintf("Updated %s", a.Name),
		}, nil
	})
	return out, err
}

func (s *Service) MarkDeceased(ctx context.Context, actor vets.Vet, orgID, animalID string, dateOfDeath time.Time, cause string) (animals.Animal, error) {
	var out animals.Animal
	err := s.mutate(ctx, actor, orgID, permissions.ActionUpdateAnimal, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		if dateOfDeath.IsZero() {
			return activity.Entry{}, ErrDeathDateRequired
		}
		a, err := lockLiveAnimal(ctx, tx, orgID, animalID)
		if err != nil {
			return activity.Entry{}, err
		}
		if err := animals.MarkDeceased(&a, dateOfDeath, cause); err != nil {
			return activity.Entry{}, err
		}
		a.UpdatedAt = s.now()
		if err := tx.Animals().Update(ctx, a); err != nil {
			return activity.Entry{}, err
		}
		out = a
		return activity.Entry{
			Action:      "ANIMAL_DECEASED",
			EntityType:  string(softdelete.KindAnimal),
			EntityID:    a.ID,
			Description: fmt.Sprintf("Marked %s as deceased", a.Name),
			Metadata:    map[string]any{"dateOfDeath": dateOfDeath.Format(time.DateOnly)},
		}, nil
	})
	return out, err
}

func (s *Service) GetAnimal(ctx context.Context, actor vets.Vet, orgID, animalID string) (animals.Animal, error) {
	var out animals.Animal
	err := s.read(ctx, actor, orgID, permissions.ActionViewRecords, func(ctx context.Context, tx store.Tx) error {
		a, err := tx.Animals().GetByID(ctx, orgID, animalID)
		if err != nil {
			return apperr.Translate(err, animals.ErrNotFound, animals.ErrAnimalNotFound)
		}
		out = a
		return nil
	})
	return out, err
}

func (s *Service) ListAnimals(ctx context.Context, actor vets.Vet, orgID string, f animals.ListFilter) ([]animals.Animal, error) {
	var out []animals.Animal
	err := s.read(ctx, actor, orgID, permissions.ActionViewRecords, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Animals().List(ctx, orgID, f)
		return err
	})
	return out, err
}

func (s *Service) DeleteAnimal(ctx context.Context, actor vets.Vet, orgID, animalID, reason string) (DeleteResult, error) {
	var res DeleteResult
	err := s.mutate(ctx, actor, orgID, permissions.ActionDeleteAnimal, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		a, counts, err := s.engine.DeleteAnimal(ctx, tx, orgID, animalID, actor.ID, reason)
		if err != nil {
			return activity.Entry{}, err
		}
		res = DeleteResult{Message: "Animal deleted", ID: a.ID, Counts: counts}
		return activity.Entry{
			Action:      "ANIMAL_DELETED",
			EntityType:  string(softdelete.KindAnimal),
			EntityID:    a.ID,
			Description: fmt.Sprintf("Deleted %s (%d treatments cascaded)", a.Name, counts.Treatments),
			Metadata: map[string]any{
				"reason":             reason,
				"cascadedTreatments": counts.Treatments,
			},
		}, nil
	})
	if err == nil {
		countCascade(softdelete.KindAnimal, res.Counts)
	}
	return res, err
}

func (s *Service) RestoreAnimal(ctx context.Context, actor vets.Vet, orgID, animalID string) (animals.Animal, error) {
	var out animals.Animal
	err := s.mutate(ctx, actor, orgID, permissions.ActionRestoreAnimal, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		a, err := s.engine.RestoreAnimal(ctx, tx, orgID, animalID)
		if err != nil {
			return activity.Entry{}, err
		}
		out = a
		return activity.Entry{
			Action:      "ANIMAL_RESTORED",
			EntityType:  string(softdelete.KindAnimal),
			EntityID:    a.ID,
			Description: fmt.Sprintf("Restored %s", a.Name),
		}, nil
	})
	return out, err
}
