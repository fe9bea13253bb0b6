package postgres

import (
	"context"
	"strings"
	"time"

	"vet-practice-api/internal/domain/treatments"
)

type TreatmentsRepo struct {
	q querier
}

var treatmentUniques = map[string]error{
	"treatment_records_parent_uq": treatments.ErrStaleLatest,
}

const treatmentColumns = `
	id, organization_id, animal_id, vet_id,
	version, parent_record_id, is_latest_version,
	visit_date, chief_complaint, history, diagnosis, treatment_given, prescriptions, notes,
	temperature_c, heart_rate, respiratory_rate, weight_kg,
	amount, payment_status, amount_paid, paid_at,
	is_scheduled, scheduled_for, follow_up_date,
	is_deleted, deleted_at, deleted_by, deletion_reason,
	created_at, updated_at`

// Create inserta una versión. Las versiones son inmutables salvo por
// is_latest_version, los campos de pago y el soft delete.
func (r *TreatmentsRepo) Create(ctx context.Context, t treatments.Record) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO treatment_records (`+treatmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
			$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)
	`,
		t.ID,
		t.OrganizationID,
		t.AnimalID,
		t.VetID,
		t.Version,
		t.ParentRecordID,
		t.IsLatestVersion,
		t.VisitDate,
		t.ChiefComplaint,
		t.History,
		t.Diagnosis,
		t.TreatmentGiven,
		t.Prescriptions,
		t.Notes,
		t.TemperatureC,
		t.HeartRate,
		t.RespiratoryRate,
		t.WeightKg,
		t.Amount,
		t.PaymentStatus,
		t.AmountPaid,
		t.PaidAt,
		t.IsScheduled,
		t.ScheduledFor,
		t.FollowUpDate,
		t.IsDeleted,
		t.DeletedAt,
		t.DeletedBy,
		t.DeletionReason,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return mapUnique(err, treatmentUniques)
}

func (r *TreatmentsRepo) Update(ctx context.Context, t treatments.Record) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE treatment_records
		SET
			is_latest_version = $3,
			amount = $4,
			payment_status = $5,
			amount_paid = $6,
			paid_at = $7,
			is_deleted = $8,
			deleted_at = $9,
			deleted_by = $10,
			deletion_reason = $11,
			updated_at = $12
		WHERE id = $1 AND organization_id = $2
	`,
		t.ID,
		t.OrganizationID,
		t.IsLatestVersion,
		t.Amount,
		t.PaymentStatus,
		t.AmountPaid,
		t.PaidAt,
		t.IsDeleted,
		t.DeletedAt,
		t.DeletedBy,
		t.DeletionReason,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, treatments.ErrNotFound)
}

func (r *TreatmentsRepo) GetByID(ctx context.Context, orgID, id string) (treatments.Record, error) {
	return r.get(ctx, orgID, id, "")
}

func (r *TreatmentsRepo) GetForUpdate(ctx context.Context, orgID, id string) (treatments.Record, error) {
	return r.get(ctx, orgID, id, " FOR UPDATE")
}

func (r *TreatmentsRepo) get(ctx context.Context, orgID, id, lock string) (treatments.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return treatments.Record{}, treatments.ErrNotFound
	}
	row := r.q.QueryRowContext(ctx, `
		SELECT `+treatmentColumns+`
		FROM treatment_records
		WHERE id = $1 AND organization_id = $2`+lock, id, orgID)
	t, err := scanTreatment(row)
	if err != nil {
		return treatments.Record{}, notFound(err, treatments.ErrNotFound)
	}
	return t, nil
}

func (r *TreatmentsRepo) MarkSuperseded(ctx context.Context, orgID, id string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE treatment_records
		SET is_latest_version = FALSE, updated_at = $3
		WHERE id = $1 AND organization_id = $2 AND is_latest_version
	`, id, orgID, at)
	if err != nil {
		return err
	}
	return checkAffected(res, treatments.ErrStaleLatest)
}

func (r *TreatmentsRepo) ListChildren(ctx context.Context, orgID, id string) ([]treatments.Record, error) {
	return r.list(ctx, `
		WHERE organization_id = $1 AND parent_record_id = $2
		ORDER BY version ASC, id ASC`, orgID, id)
}

func (r *TreatmentsRepo) ListByAnimal(ctx context.Context, orgID, animalID string) ([]treatments.Record, error) {
	return r.list(ctx, `
		WHERE organization_id = $1 AND animal_id = $2
		ORDER BY visit_date DESC, version ASC, id ASC`, orgID, animalID)
}

func (r *TreatmentsRepo) List(ctx context.Context, orgID string, f treatments.ListFilter) ([]treatments.Record, error) {
	return r.list(ctx, `
		WHERE organization_id = $1
			AND ($2 = '' OR animal_id = $2)
			AND (NOT $3 OR is_latest_version)
			AND ($4 OR NOT is_deleted)
			AND ($5::boolean IS NULL OR is_scheduled = $5)
		ORDER BY visit_date DESC, version ASC, id ASC`,
		orgID, f.AnimalID, f.OnlyLatest, f.IncludeDeleted, f.Scheduled)
}

func (r *TreatmentsRepo) list(ctx context.Context, tail string, args ...any) ([]treatments.Record, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+treatmentColumns+` FROM treatment_records `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]treatments.Record, 0)
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTreatment(s rowScanner) (treatments.Record, error) {
	var t treatments.Record
	err := s.Scan(
		&t.ID,
		&t.OrganizationID,
		&t.AnimalID,
		&t.VetID,
		&t.Version,
		&t.ParentRecordID,
		&t.IsLatestVersion,
		&t.VisitDate,
		&t.ChiefComplaint,
		&t.History,
		&t.Diagnosis,
		&t.TreatmentGiven,
		&t.Prescriptions,
		&t.Notes,
		&t.TemperatureC,
		&t.HeartRate,
		&t.RespiratoryRate,
		&t.WeightKg,
		&t.Amount,
		&t.PaymentStatus,
		&t.AmountPaid,
		&t.PaidAt,
		&t.IsScheduled,
		&t.ScheduledFor,
		&t.FollowUpDate,
		&t.IsDeleted,
		&t.DeletedAt,
		&t.DeletedBy,
		&t.DeletionReason,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}
