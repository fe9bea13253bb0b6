package vets

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-practice-api/internal/platform/apperr"
	"vet-practice-api/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	ErrVetNotFound       = apperr.NotFound("VET_NOT_FOUND", "vet not found")
	ErrInvalidTransition = apperr.Precondition("INVALID_STATUS_TRANSITION", "vet status transition is not allowed")
	ErrNotMasterAdmin    = apperr.Forbidden("MASTER_ADMIN_REQUIRED", "only a master admin can do this")
)

type Options struct {
	// Emails que al registrarse quedan como master admin aprobado.
	MasterAdminEmails []string
	// En dev/tests: todo vet nuevo queda APPROVED.
	AutoApprove bool
}

type Service struct {
	repo        Repository
	masters     map[string]struct{}
	autoApprove bool
	now         func() time.Time
}

func NewService(repo Repository, opts Options) *Service {
	masters := make(map[string]struct{}, len(opts.MasterAdminEmails))
	for _, e := range opts.MasterAdminEmails {
		if e = normalizeEmail(e); e != "" {
			masters[e] = struct{}{}
		}
	}
	return &Service{
		repo:        repo,
		masters:     masters,
		autoApprove: opts.AutoApprove,
		now:         time.Now,
	}
}

// Resolve devuelve el Vet asociado a los claims verificados, creándolo si es la
// primera vez que aparece el subject.
func (s *Service) Resolve(ctx context.Context, claims auth.Claims) (Vet, error) {
	subject := strings.TrimSpace(claims.UserID)
	if subject == "" {
		return Vet{}, apperr.Unauthorized("missing subject")
	}

	v, err := s.repo.GetBySubject(ctx, subject)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Vet{}, err
	}

	email := normalizeEmail(claims.Email)
	if email == "" {
		// modo dev: sin email, derivamos uno estable del subject
		email = subject + "@users.local"
	}

	now := s.now()
	v = Vet{
		ID:          uuid.NewString(),
		AuthSubject: subject,
		Email:       email,
		Name:        strings.TrimSpace(claims.Name),
		Status:      StatusPendingApproval,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, ok := s.masters[email]; ok {
		v.IsMasterAdmin = true
		v.Status = StatusApproved
	}
	if s.autoApprove {
		v.Status = StatusApproved
	}

	if err := s.repo.Create(ctx, v); err != nil {
		if errors.Is(err, ErrSubjectTaken) {
			// otra request creó el mismo subject entre la lectura y el insert
			return s.repo.GetBySubject(ctx, subject)
		}
		if errors.Is(err, ErrEmailTaken) {
			return Vet{}, apperr.Conflict("EMAIL_TAKEN", "email already registered to another identity")
		}
		return Vet{}, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (Vet, error) {
	v, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Vet{}, ErrVetNotFound
		}
		return Vet{}, err
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, actor Vet, status ApprovalStatus) ([]Vet, error) {
	if !actor.IsMasterAdmin {
		return nil, ErrNotMasterAdmin
	}
	return s.repo.List(ctx, status)
}

// UpdateStatus aplica la máquina de estados de aprobación. Solo master admin.
func (s *Service) UpdateStatus(ctx context.Context, actor Vet, vetID string, to ApprovalStatus) (Vet, error) {
	if !actor.IsMasterAdmin {
		return Vet{}, ErrNotMasterAdmin
	}
	if !to.Valid() {
		return Vet{}, apperr.Invalid("INVALID_STATUS", "unknown approval status")
	}

	v, err := s.Get(ctx, vetID)
	if err != nil {
		return Vet{}, err
	}
	if !CanTransition(v.Status, to) {
		return Vet{}, ErrInvalidTransition.WithDetails(map[string]any{
			"from": v.Status,
			"to":   to,
		})
	}

	v.Status = to
	v.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, v); err != nil {
		return Vet{}, err
	}
	return v, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
