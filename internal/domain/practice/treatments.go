package practice

import (
	"context"
	"errors"
	"fmt"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/animals"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/permissions"
	"vet-practice-api/internal/domain/softdelete"
	"vet-practice-api/internal/domain/treatments"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/platform/apperr"
	"vet-practice-api/internal/ports/store"
)

func (s *Service) CreateTreatment(ctx context.Context, actor vets.Vet, orgID string, in treatments.Input) (treatments.Record, error) {
	var out treatments.Record
	err := s.mutate(ctx, actor, orgID, permissions.ActionCreateTreatment, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		a, err := tx.Animals().GetForUpdate(ctx, orgID, in.AnimalID)
		if err != nil {
			return activity.Entry{}, apperr.Translate(err, animals.ErrNotFound, animals.ErrAnimalNotFound)
		}
		if a.IsDeleted {
			return activity.Entry{}, animals.ErrAnimalDeleted.WithDetails(map[string]any{"animalId": a.ID})
		}
		rec, err := treatments.NewRecord(orgID, actor.ID, in, s.now())
		if err != nil {
			return activity.Entry{}, err
		}
		if err := tx.Treatments().Create(ctx, rec); err != nil {
			return activity.Entry{}, err
		}
		out = rec
		return activity.Entry{
			Action:      "TREATMENT_CREATED",
			EntityType:  string(softdelete.KindTreatment),
			EntityID:    rec.ID,
			Description: fmt.Sprintf("Recorded visit for %s on %s", a.Name, rec.VisitDate.Format("2006-01-02")),
			Metadata:    map[string]any{"animalId": a.ID, "version": rec.Version},
		}, nil
	})
	return out, err
}

// AmendTreatment agrega la versión siguiente de la cadena. El registro
// indicado tiene que ser el latest; se bloquea animal y después registro.
func (s *Service) AmendTreatment(ctx context.Context, actor vets.Vet, orgID, recordID string, ch treatments.Changes) (treatments.Record, error) {
	var out treatments.Record
	err := s.mutate(ctx, actor, orgID, permissions.ActionAmendTreatment, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		peek, err := tx.Treatments().GetByID(ctx, orgID, recordID)
		if err != nil {
			return activity.Entry{}, apperr.Translate(err, treatments.ErrNotFound, treatments.ErrTreatmentNotFound)
		}
		a, err := tx.Animals().GetForUpdate(ctx, orgID, peek.AnimalID)
		if err != nil {
			return activity.Entry{}, apperr.Translate(err, animals.ErrNotFound, animals.ErrAnimalNotFound)
		}
		latest, err := tx.Treatments().GetForUpdate(ctx, orgID, recordID)
		if err != nil {
			return activity.Entry{}, apperr.Translate(err, treatments.ErrNotFound, treatments.ErrTreatmentNotFound)
		}

		now := s.now()
		next, err := treatments.Amend(latest, a.IsDeleted, actor.ID, ch, now)
		if err != nil {
			return activity.Entry{}, err
		}
		if err := tx.Treatments().MarkSuperseded(ctx, orgID, latest.ID, now); err != nil {
			return activity.Entry{}, staleVersion(err, latest)
		}
		if err := tx.Treatments().Create(ctx, next); err != nil {
			return activity.Entry{}, staleVersion(err, latest)
		}
		out = next
		return activity.Entry{
			Action:      "TREATMENT_AMENDED",
			EntityType:  string(softdelete.KindTreatment),
			EntityID:    next.ID,
			Description: fmt.Sprintf("Amended treatment for %s to version %d", a.Name, next.Version),
			Metadata: map[string]any{
				"animalId":       a.ID,
				"parentRecordId": latest.ID,
				"version":        next.Version,
			},
		}, nil
	})
	return out, err
}

func staleVersion(err error, latest treatments.Record) error {
	if errors.Is(err, treatments.ErrStaleLatest) {
		return treatments.ErrVersionConflict.WithDetails(map[string]any{"currentVersion": latest.Version})
	}
	return err
}

func (s *Service) GetTreatment(ctx context.Context, actor vets.Vet, orgID, recordID string) (treatments.Record, error) {
	var out treatments.Record
	err := s.read(ctx, actor, orgID, permissions.ActionViewRecords, func(ctx context.Context, tx store.Tx) error {
		rec, err := tx.Treatments().GetByID(ctx, orgID, recordID)
		if err != nil {
			return apperr.Translate(err, treatments.ErrNotFound, treatments.ErrTreatmentNotFound)
		}
		out = rec
		return nil
	})
	return out, err
}

// TreatmentHistory devuelve la cadena completa de recordID ordenada por versión.
func (s *Service) TreatmentHistory(ctx context.Context, actor vets.Vet, orgID, recordID string) ([]treatments.Record, error) {
	var out []treatments.Record
	err := s.read(ctx, actor, orgID, permissions.ActionViewRecords, func(ctx context.Context, tx store.Tx) error {
		chain, err := treatments.ResolveChain(ctx, tx.Treatments(), orgID, recordID)
		if err != nil {
			return apperr.Translate(err, treatments.ErrNotFound, treatments.ErrTreatmentNotFound)
		}
		out = chain
		return nil
	})
	return out, err
}

func (s *Service) ListTreatments(ctx context.Context, actor vets.Vet, orgID string, f treatments.ListFilter) ([]treatments.Record, error) {
	var out []treatments.Record
	err := s.read(ctx, actor, orgID, permissions.ActionViewRecords, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Treatments().List(ctx, orgID, f)
		return err
	})
	return out, err
}

func (s *Service) DeleteTreatment(ctx context.Context, actor vets.Vet, orgID, recordID, reason string) (DeleteResult, error) {
	var res DeleteResult
	err := s.mutate(ctx, actor, orgID, permissions.ActionDeleteTreatment, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		rec, err := s.engine.DeleteTreatment(ctx, tx, orgID, recordID, actor.ID, reason)
		if err != nil {
			return activity.Entry{}, err
		}
		res = DeleteResult{Message: "Treatment deleted", ID: rec.ID}
		return activity.Entry{
			Action:      "TREATMENT_DELETED",
			EntityType:  string(softdelete.KindTreatment),
			EntityID:    rec.ID,
			Description: fmt.Sprintf("Deleted treatment version %d", rec.Version),
			Metadata:    map[string]any{"reason": reason, "animalId": rec.AnimalID},
		}, nil
	})
	return res, err
}

func (s *Service) RestoreTreatment(ctx context.Context, actor vets.Vet, orgID, recordID string) (treatments.Record, error) {
	var out treatments.Record
	err := s.mutate(ctx, actor, orgID, permissions.ActionRestoreTreatment, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		rec, err := s.engine.RestoreTreatment(ctx, tx, orgID, recordID)
		if err != nil {
			return activity.Entry{}, err
		}
		out = rec
		return activity.Entry{
			Action:      "TREATMENT_RESTORED",
			EntityType:  string(softdelete.KindTreatment),
			EntityID:    rec.ID,
			Description: fmt.Sprintf("Restored treatment version %d", rec.Version),
		}, nil
	})
	return out, err
}
