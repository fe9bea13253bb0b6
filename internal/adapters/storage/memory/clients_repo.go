package memory

import (
	"context"
	"sort"
	"strings"

	"vet-practice-api/internal/domain/clients"
)

type clientRepo struct {
	st *state
}

func (r *clientRepo) Create(ctx context.Context, c clients.Client) error {
	if strings.TrimSpace(c.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.st.clients[c.ID]; exists {
		return errDuplicate
	}
	r.st.clients[c.ID] = c
	return nil
}

func (r *clientRepo) Update(ctx context.Context, c clients.Client) error {
	if _, exists := r.st.clients[c.ID]; !exists {
		return clients.ErrNotFound
	}
	r.st.clients[c.ID] = c
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, orgID, id string) (clients.Client, error) {
	c, ok := r.st.clients[id]
	if !ok || c.OrganizationID != orgID {
		return clients.Client{}, clients.ErrNotFound
	}
	return c, nil
}

// GetForUpdate: la transacción ya es exclusiva, no hace falta más lock.
func (r *clientRepo) GetForUpdate(ctx context.Context, orgID, id string) (clients.Client, error) {
	return r.GetByID(ctx, orgID, id)
}

func (r *clientRepo) List(ctx context.Context, orgID string, f clients.ListFilter) ([]clients.Client, error) {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]clients.Client, 0)
	for _, c := range r.st.clients {
		if c.OrganizationID != orgID {
			continue
		}
		if c.IsDeleted && !f.IncludeDeleted {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.FullName()+" "+c.Email+" "+c.Phone), q) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName == out[j].LastName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	return out, nil
}
