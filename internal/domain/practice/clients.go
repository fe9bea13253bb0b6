package practice

import (
	"context"
	"fmt"
	"strings"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/cascade"
	"vet-practice-api/internal/domain/clients"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/permissions"
	"vet-practice-api/internal/domain/softdelete"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/platform/apperr"
	"vet-practice-api/internal/platform/metrics"
	"vet-practice-api/internal/ports/store"

	"github.com/google/uuid"
)

var ErrClientInvalid = apperr.Invalid("INVALID_CLIENT", "firstName and lastName are required")

// DeleteResult es la respuesta de un borrado: la raíz y cuántos descendientes cayeron con ella.
type DeleteResult struct {
	Message string
	ID      string
	Counts  cascade.Counts
}

func (s *Service) CreateClient(ctx context.Context, actor vets.Vet, orgID string, in clients.Input) (clients.Client, error) {
	var out clients.Client
	err := s.mutate(ctx, actor, orgID, permissions.ActionCreateClient, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		if err := in.Validate(); err != nil {
			return activity.Entry{}, apperr.Translate(err, clients.ErrInvalidInput, ErrClientInvalid)
		}
		now := s.now()
		out = clients.Client{
			ID:             uuid.NewString(),
			OrganizationID: orgID,
			FirstName:      strings.TrimSpace(in.FirstName),
			LastName:       strings.TrimSpace(in.LastName),
			Email:          strings.TrimSpace(in.Email),
			Phone:          strings.TrimSpace(in.Phone),
			Address:        strings.TrimSpace(in.Address),
			Notes:          strings.TrimSpace(in.Notes),
			CreatedByVetID: actor.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Clients().Create(ctx, out); err != nil {
			return activity.Entry{}, err
		}
		return activity.Entry{
			Action:      "CLIENT_CREATED",
			EntityType:  string(softdelete.KindClient),
			EntityID:    out.ID,
			Description: fmt.Sprintf("Created client %s", out.FullName()),
		}, nil
	})
	return out, err
}

func (s *Service) UpdateClient(ctx context.Context, actor vets.Vet, orgID, clientID string, p clients.Patch) (clients.Client, error) {
	var out clients.Client
	err := s.mutate(ctx, actor, orgID, permissions.ActionUpdateClient, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		c, err := tx.Clients().GetForUpdate(ctx, orgID, clientID)
		if err != nil {
			return activity.Entry{}, apperr.Translate(err, clients.ErrNotFound, clients.ErrClientNotFound)
		}
		if c.IsDeleted {
			return activity.Entry{}, clients.ErrClientDeleted
		}
		if err := p.ApplyTo(&c); err != nil {
			return activity.Entry{}, apperr.Translate(err, clients.ErrInvalidInput, ErrClientInvalid)
		}
		c.UpdatedAt = s.now()
		if err := tx.Clients().Update(ctx, c); err != nil {
			return activity.Entry{}, err
		}
		out = c
		return activity.Entry{
			Action:      "CLIENT_UPDATED",
			EntityType:  string(softdelete.KindClient),
			EntityID:    c.ID,
			Description: fmt.Sprintf("Updated client %s", c.FullName()),
		}, nil
	})
	return out, err
}

func (s *Service) GetClient(ctx context.Context, actor vets.Vet, orgID, clientID string) (clients.Client, error) {
	var out clients.Client
	err := s.read(ctx, actor, orgID, permissions.ActionViewRecords, func(ctx context.Context, tx store.Tx) error {
		c, err := tx.Clients().GetByID(ctx, orgID, clientID)
		if err != nil {
			return apperr.Translate(err, clients.ErrNotFound, clients.ErrClientNotFound)
		}
		out = c
		return nil
	})
	return out, err
}

func (s *Service) ListClients(ctx context.Context, actor vets.Vet, orgID string, f clients.ListFilter) ([]clients.Client, error) {
	var out []clients.Client
	err := s.read(ctx, actor, orgID, permissions.ActionViewRecords, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Clients().List(ctx, orgID, f)
		return err
	})
	return out, err
}

// DeleteClient borra el cliente con todos sus animales y tratamientos vivos.
func (s *Service) DeleteClient(ctx context.Context, actor vets.Vet, orgID, clientID, reason string) (DeleteResult, error) {
	var res DeleteResult
	err := s.mutate(ctx, actor, orgID, permissions.ActionDeleteClient, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		c, counts, err := s.engine.DeleteClient(ctx, tx, orgID, clientID, actor.ID, reason)
		if err != nil {
			return activity.Entry{}, err
		}
		res = DeleteResult{Message: "Client deleted", ID: c.ID, Counts: counts}
		return activity.Entry{
			Action:      "CLIENT_DELETED",
			EntityType:  string(softdelete.KindClient),
			EntityID:    c.ID,
			Description: fmt.Sprintf("Deleted client %s (%d animals, %d treatments cascaded)", c.FullName(), counts.Animals, counts.Treatments),
			Metadata: map[string]any{
				"reason":             reason,
				"cascadedAnimals":    counts.Animals,
				"cascadedTreatments": counts.Treatments,
			},
		}, nil
	})
	if err == nil {
		countCascade(softdelete.KindClient, res.Counts)
	}
	return res, err
}

// RestoreClient restaura solo el cliente; los descendientes se restauran uno por uno.
func (s *Service) RestoreClient(ctx context.Context, actor vets.Vet, orgID, clientID string) (clients.Client, error) {
	var out clients.Client
	err := s.mutate(ctx, actor, orgID, permissions.ActionRestoreClient, func(ctx context.Context, tx store.Tx, _ *orgs.Membership) (activity.Entry, error) {
		c, err := s.engine.RestoreClient(ctx, tx, orgID, clientID)
		if err != nil {
			return activity.Entry{}, err
		}
		out = c
		return activity.Entry{
			Action:      "CLIENT_RESTORED",
			EntityType:  string(softdelete.KindClient),
			EntityID:    c.ID,
			Description: fmt.Sprintf("Restored client %s", c.FullName()),
		}, nil
	})
	return out, err
}

func countCascade(root softdelete.Kind, c cascade.Counts) {
	if c.Animals > 0 {
		metrics.CascadedRows.WithLabelValues(string(root), string(softdelete.KindAnimal)).Add(float64(c.Animals))
	}
	if c.Treatments > 0 {
		metrics.CascadedRows.WithLabelValues(string(root), string(softdelete.KindTreatment)).Add(float64(c.Treatments))
	}
}
