package practice

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/cascade"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/permissions"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/platform/apperr"
	"vet-practice-api/internal/platform/logger"
	"vet-practice-api/internal/platform/metrics"
	"vet-practice-api/internal/ports/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrVetNotApproved = apperr.Forbidden("VET_NOT_APPROVED", "your account has not been approved yet")
	ErrOrgNotFound    = apperr.NotFound("ORGANIZATION_NOT_FOUND", "organization not found")
	ErrOrgInactive    = apperr.Precondition("ORGANIZATION_INACTIVE", "organization is not active")
)

// Service es el orquestador de mutaciones: membresía, permiso, transacción y
// después auditoría best-effort. Todo handler de escritura pasa por acá.
type Service struct {
	store    store.Store
	vets     *vets.Service
	engine   *cascade.Engine
	recorder *activity.Recorder
	log      logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewService(st store.Store, vetsSvc *vets.Service, rec *activity.Recorder, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		store:    st,
		vets:     vetsSvc,
		recorder: rec,
		log:      log,
		tracer:   otel.Tracer("vet-practice-api/practice"), // no-op sin TracerProvider registrado
		now:      time.Now,
	}
	s.engine = cascade.NewEngine(func() time.Time { return s.now() })
	return s
}

// Vets expone la resolución de identidad a los handlers.
func (s *Service) Vets() *vets.Service { return s.vets }

func actorOf(v vets.Vet) permissions.Actor {
	return permissions.Actor{VetID: v.ID, IsMasterAdmin: v.IsMasterAdmin}
}

func requireApproved(v vets.Vet) error {
	if v.IsMasterAdmin || v.Status == vets.StatusApproved {
		return nil
	}
	return ErrVetNotApproved.WithDetails(map[string]any{"status": v.Status})
}

// authorize carga la membresía dentro de tx y corre el resolver. La
// organización tiene que existir incluso para un master admin.
func (s *Service) authorize(ctx context.Context, tx store.Tx, actor vets.Vet, orgID string, action permissions.Action) (*orgs.Membership, error) {
	org, err := tx.Orgs().GetOrganization(ctx, strings.TrimSpace(orgID))
	if err != nil {
		return nil, apperr.Translate(err, orgs.ErrNotFound, ErrOrgNotFound)
	}
	if !org.IsActive && !actor.IsMasterAdmin {
		return nil, ErrOrgInactive
	}

	var m *orgs.Membership
	found, err := tx.Orgs().FindMembership(ctx, org.ID, actor.ID)
	switch {
	case err == nil:
		m = &found
	case !errors.Is(err, orgs.ErrMembershipNotFound):
		return nil, err
	}

	if err := permissions.CanPerform(actorOf(actor), m, action).Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// mutation es lo que una operación de escritura corre dentro de la transacción.
// Devuelve la entrada de auditoría a escribir si todo sale bien.
type mutation func(ctx context.Context, tx store.Tx, m *orgs.Membership) (activity.Entry, error)

func (s *Service) mutate(ctx context.Context, actor vets.Vet, orgID string, action permissions.Action, fn mutation) error {
	ctx, span := s.tracer.Start(ctx, "practice."+strings.ToLower(string(action)), trace.WithAttributes(
		attribute.String("org.id", orgID),
		attribute.String("vet.id", actor.ID),
	))
	defer span.End()

	var entry activity.Entry
	err := requireApproved(actor)
	if err == nil {
		err = s.store.RunInTx(ctx, func(tx store.Tx) error {
			m, err := s.authorize(ctx, tx, actor, orgID, action)
			if err != nil {
				return err
			}
			entry, err = fn(ctx, tx, m)
			return err
		})
	}
	if err != nil {
		s.fail(span, string(action), err)
		return err
	}

	metrics.Mutations.WithLabelValues(string(action), "ok").Inc()
	entry.VetID = actor.ID
	if entry.OrganizationID == "" {
		entry.OrganizationID = orgID
	}
	s.record(ctx, entry)
	return nil
}

// read autoriza y corre fn en una transacción sin auditar.
func (s *Service) read(ctx context.Context, actor vets.Vet, orgID string, action permissions.Action, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := requireApproved(actor); err != nil {
		return err
	}
	return s.store.RunInTx(ctx, func(tx store.Tx) error {
		if _, err := s.authorize(ctx, tx, actor, orgID, action); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}

func (s *Service) fail(span trace.Span, action string, err error) {
	code := resultCode(err)
	if code == "internal" {
		s.log.Error("mutation failed", map[string]any{"action": action, "err": err})
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, code)
	metrics.Mutations.WithLabelValues(action, code).Inc()
}

func (s *Service) record(ctx context.Context, e activity.Entry) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, e)
}
