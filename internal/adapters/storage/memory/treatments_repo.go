package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"vet-practice-api/internal/domain/treatments"
)

type treatmentRepo struct {
	st *state
}

func (r *treatmentRepo) Create(ctx context.Context, t treatments.Record) error {
	if strings.TrimSpace(t.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.st.treatments[t.ID]; exists {
		return errDuplicate
	}
	r.st.treatments[t.ID] = t
	return nil
}

func (r *treatmentRepo) Update(ctx context.Context, t treatments.Record) error {
	if _, exists := r.st.treatments[t.ID]; !exists {
		return treatments.ErrNotFound
	}
	r.st.treatments[t.ID] = t
	return nil
}

func (r *treatmentRepo) GetByID(ctx context.Context, orgID, id string) (treatments.Record, error) {
	t, ok := r.st.treatments[id]
	if !ok || t.OrganizationID != orgID {
		return treatments.Record{}, treatments.ErrNotFound
	}
	return t, nil
}

func (r *treatmentRepo) GetForUpdate(ctx context.Context, orgID, id string) (treatments.Record, error) {
	return r.GetByID(ctx, orgID, id)
}

func (r *treatmentRepo) MarkSuperseded(ctx context.Context, orgID, id string, at time.Time) error {
	t, err := r.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if !t.IsLatestVersion {
		return treatments.ErrStaleLatest
	}
	t.IsLatestVersion = false
	t.UpdatedAt = at
	r.st.treatments[id] = t
	return nil
}

func (r *treatmentRepo) ListChildren(ctx context.Context, orgID, id string) ([]treatments.Record, error) {
	out := make([]treatments.Record, 0)
	for _, t := range r.st.treatments {
		if t.OrganizationID == orgID && t.ParentRecordID != nil && *t.ParentRecordID == id {
			out = append(out, t)
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *treatmentRepo) ListByAnimal(ctx context.Context, orgID, animalID string) ([]treatments.Record, error) {
	return r.List(ctx, orgID, treatments.ListFilter{AnimalID: animalID, IncludeDeleted: true})
}

func (r *treatmentRepo) List(ctx context.Context, orgID string, f treatments.ListFilter) ([]treatments.Record, error) {
	out := make([]treatments.Record, 0)
	for _, t := range r.st.treatments {
		if t.OrganizationID != orgID {
			continue
		}
		if f.AnimalID != "" && t.AnimalID != f.AnimalID {
			continue
		}
		if f.OnlyLatest && !t.IsLatestVersion {
			continue
		}
		if t.IsDeleted && !f.IncludeDeleted {
			continue
		}
		if f.Scheduled != nil && t.IsScheduled != *f.Scheduled {
			continue
		}
		out = append(out, t)
	}
	sortRecords(out)
	return out, nil
}

// sortRecords: visita más reciente primero; dentro de una cadena, versión ascendente.
func sortRecords(out []treatments.Record) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].VisitDate.Equal(out[j].VisitDate) {
			return out[i].VisitDate.After(out[j].VisitDate)
		}
		if out[i].Version != out[j].Version {
			return out[i].Version < out[j].Version
		}
		return out[i].ID < out[j].ID
	})
}
