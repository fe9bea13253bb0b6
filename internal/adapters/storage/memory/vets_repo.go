package memory

import (
	"context"
	"sort"
	"strings"

	"vet-practice-api/internal/domain/vets"
)

type vetRepo struct {
	st *state
}

func (r *vetRepo) Create(ctx context.Context, v vets.Vet) error {
	if strings.TrimSpace(v.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.st.vets[v.ID]; exists {
		return errDuplicate
	}
	for _, other := range r.st.vets {
		if other.AuthSubject == v.AuthSubject {
			return vets.ErrSubjectTaken
		}
	}
	for _, other := range r.st.vets {
		if strings.EqualFold(other.Email, v.Email) {
			return vets.ErrEmailTaken
		}
	}
	r.st.vets[v.ID] = v
	return nil
}

func (r *vetRepo) Update(ctx context.Context, v vets.Vet) error {
	if _, exists := r.st.vets[v.ID]; !exists {
		return vets.ErrNotFound
	}
	r.st.vets[v.ID] = v
	return nil
}

func (r *vetRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	v, ok := r.st.vets[id]
	if !ok {
		return vets.Vet{}, vets.ErrNotFound
	}
	return v, nil
}

func (r *vetRepo) GetBySubject(ctx context.Context, subject string) (vets.Vet, error) {
	for _, v := range r.st.vets {
		if v.AuthSubject == subject {
			return v, nil
		}
	}
	return vets.Vet{}, vets.ErrNotFound
}

func (r *vetRepo) GetByEmail(ctx context.Context, email string) (vets.Vet, error) {
	for _, v := range r.st.vets {
		if strings.EqualFold(v.Email, strings.TrimSpace(email)) {
			return v, nil
		}
	}
	return vets.Vet{}, vets.ErrNotFound
}

func (r *vetRepo) List(ctx context.Context, status vets.ApprovalStatus) ([]vets.Vet, error) {
	out := make([]vets.Vet, 0)
	for _, v := range r.st.vets {
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
