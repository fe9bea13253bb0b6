package memory

import (
	"context"
	"sort"
	"strings"

	"vet-practice-api/internal/domain/animals"
)

type animalRepo struct {
	st *state
}

// microchipTaken replica el índice único parcial (org, microchip) WHERE NOT is_deleted.
func (r *animalRepo) microchipTaken(a animals.Animal) bool {
	if a.MicrochipNumber == nil || a.IsDeleted {
		return false
	}
	for _, other := range r.st.animals {
		if other.ID == a.ID || other.IsDeleted || other.MicrochipNumber == nil {
			continue
		}
		if other.OrganizationID == a.OrganizationID && *other.MicrochipNumber == *a.MicrochipNumber {
			return true
		}
	}
	return false
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	if strings.TrimSpace(a.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.st.animals[a.ID]; exists {
		return errDuplicate
	}
	if r.microchipTaken(a) {
		return animals.ErrMicrochipTaken
	}
	r.st.animals[a.ID] = a
	return nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	if _, exists := r.st.animals[a.ID]; !exists {
		return animals.ErrNotFound
	}
	if r.microchipTaken(a) {
		return animals.ErrMicrochipTaken
	}
	r.st.animals[a.ID] = a
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, orgID, id string) (animals.Animal, error) {
	a, ok := r.st.animals[id]
	if !ok || a.OrganizationID != orgID {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) GetForUpdate(ctx context.Context, orgID, id string) (animals.Animal, error) {
	return r.GetByID(ctx, orgID, id)
}

func (r *animalRepo) List(ctx context.Context, orgID string, f animals.ListFilter) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0)
	for _, a := range r.st.animals {
		if a.OrganizationID != orgID {
			continue
		}
		if f.ClientID != "" && a.ClientID != f.ClientID {
			continue
		}
		if a.IsDeleted && !f.IncludeDeleted {
			continue
		}
		out = append(out, a)
	}
	sortAnimals(out)
	return out, nil
}

func (r *animalRepo) ListByClient(ctx context.Context, orgID, clientID string) ([]animals.Animal, error) {
	return r.List(ctx, orgID, animals.ListFilter{ClientID: clientID, IncludeDeleted: true})
}

func (r *animalRepo) FindLiveByMicrochip(ctx context.Context, orgID, microchip string) (animals.Animal, error) {
	for _, a := range r.st.animals {
		if a.OrganizationID != orgID || a.IsDeleted || a.MicrochipNumber == nil {
			continue
		}
		if *a.MicrochipNumber == microchip {
			return a, nil
		}
	}
	return animals.Animal{}, animals.ErrNotFound
}

func sortAnimals(out []animals.Animal) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
