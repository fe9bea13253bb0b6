package practice

import (
	"context"
	"fmt"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/permissions"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/ports/store"
)

// ListActivity lee el log legible de la organización. Exige el flag de
// actividad salvo para owner y master admin.
func (s *Service) ListActivity(ctx context.Context, actor vets.Vet, orgID string, f activity.ListFilter) ([]activity.ActivityLog, error) {
	err := s.read(ctx, actor, orgID, permissions.ActionViewActivityLog, func(context.Context, store.Tx) error { return nil })
	if err != nil {
		return nil, err
	}
	return s.store.Activity().ListActivity(ctx, orgID, f)
}

// ListAudit es la traza de plataforma completa; solo master admin.
func (s *Service) ListAudit(ctx context.Context, actor vets.Vet, f activity.ListFilter) ([]activity.AuditLog, error) {
	if !actor.IsMasterAdmin {
		return nil, vets.ErrNotMasterAdmin
	}
	return s.store.Activity().ListAudit(ctx, f)
}

func (s *Service) ListVets(ctx context.Context, actor vets.Vet, status vets.ApprovalStatus) ([]vets.Vet, error) {
	return s.vets.List(ctx, actor, status)
}

// UpdateVetStatus mueve la aprobación de un veterinario y deja traza sin organización.
func (s *Service) UpdateVetStatus(ctx context.Context, actor vets.Vet, vetID string, to vets.ApprovalStatus) (vets.Vet, error) {
	if !actor.IsMasterAdmin {
		return vets.Vet{}, vets.ErrNotMasterAdmin
	}
	before, err := s.vets.Get(ctx, vetID)
	if err != nil {
		return vets.Vet{}, err
	}
	v, err := s.vets.UpdateStatus(ctx, actor, vetID, to)
	if err != nil {
		return vets.Vet{}, err
	}
	s.record(ctx, activity.Entry{
		VetID:       actor.ID,
		Action:      "VET_STATUS_UPDATED",
		EntityType:  "vet",
		EntityID:    v.ID,
		Description: fmt.Sprintf("%s set to %s", v.Email, v.Status),
		Metadata:    map[string]any{"from": before.Status, "to": v.Status},
	})
	return v, nil
}
