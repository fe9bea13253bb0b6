package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/animals"
	"vet-practice-api/internal/domain/clients"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/treatments"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/ports/store"
)

var (
	errIDRequired = errors.New("memory: id required")
	errDuplicate  = errors.New("memory: already exists")
)

// state es todo lo transaccional. Las entidades se guardan por valor, así que
// una copia superficial de los mapas alcanza para aislar una transacción.
type state struct {
	vets        map[string]vets.Vet
	orgs        map[string]orgs.Organization
	memberships map[string]orgs.Membership
	invitations map[string]orgs.Invitation
	clients     map[string]clients.Client
	animals     map[string]animals.Animal
	treatments  map[string]treatments.Record
}

func newState() *state {
	return &state{
		vets:        make(map[string]vets.Vet),
		orgs:        make(map[string]orgs.Organization),
		memberships: make(map[string]orgs.Membership),
		invitations: make(map[string]orgs.Invitation),
		clients:     make(map[string]clients.Client),
		animals:     make(map[string]animals.Animal),
		treatments:  make(map[string]treatments.Record),
	}
}

func (s *state) clone() *state {
	return &state{
		vets:        maps.Clone(s.vets),
		orgs:        maps.Clone(s.orgs),
		memberships: maps.Clone(s.memberships),
		invitations: maps.Clone(s.invitations),
		clients:     maps.Clone(s.clients),
		animals:     maps.Clone(s.animals),
		treatments:  maps.Clone(s.treatments),
	}
}

// Store es el backend in-memory (dev/tests). Las transacciones se serializan:
// se clona el estado, fn trabaja sobre la copia y solo si termina bien se publica.
type Store struct {
	mu sync.Mutex
	st *state

	logs *activityRepo
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		st:   newState(),
		logs: newActivityRepo(),
	}
}

type tx struct {
	st *state
}

func (t *tx) Vets() vets.Repository             { return &vetRepo{st: t.st} }
func (t *tx) Orgs() orgs.Repository             { return &orgRepo{st: t.st} }
func (t *tx) Clients() clients.Repository       { return &clientRepo{st: t.st} }
func (t *tx) Animals() animals.Repository       { return &animalRepo{st: t.st} }
func (t *tx) Treatments() treatments.Repository { return &treatmentRepo{st: t.st} }

func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&tx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Vets fuera de transacción: cada llamada toma el lock del store.
func (s *Store) Vets() vets.Repository { return &lockedVetRepo{s: s} }

func (s *Store) Activity() activity.Repository { return s.logs }

func (s *Store) Ping(context.Context) error { return nil }

type lockedVetRepo struct {
	s *Store
}

func (r *lockedVetRepo) with(fn func(vr *vetRepo) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(&vetRepo{st: r.s.st})
}

func (r *lockedVetRepo) Create(ctx context.Context, v vets.Vet) error {
	return r.with(func(vr *vetRepo) error { return vr.Create(ctx, v) })
}

func (r *lockedVetRepo) Update(ctx context.Context, v vets.Vet) error {
	return r.with(func(vr *vetRepo) error { return vr.Update(ctx, v) })
}

func (r *lockedVetRepo) GetByID(ctx context.Context, id string) (out vets.Vet, err error) {
	err = r.with(func(vr *vetRepo) error { out, err = vr.GetByID(ctx, id); return err })
	return out, err
}

func (r *lockedVetRepo) GetBySubject(ctx context.Context, subject string) (out vets.Vet, err error) {
	err = r.with(func(vr *vetRepo) error { out, err = vr.GetBySubject(ctx, subject); return err })
	return out, err
}

func (r *lockedVetRepo) GetByEmail(ctx context.Context, email string) (out vets.Vet, err error) {
	err = r.with(func(vr *vetRepo) error { out, err = vr.GetByEmail(ctx, email); return err })
	return out, err
}

func (r *lockedVetRepo) List(ctx context.Context, status vets.ApprovalStatus) (out []vets.Vet, err error) {
	err = r.with(func(vr *vetRepo) error { out, err = vr.List(ctx, status); return err })
	return out, err
}
