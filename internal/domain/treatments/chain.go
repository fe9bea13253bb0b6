package treatments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"vet-practice-api/internal/domain/patch"
	"vet-practice-api/internal/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrTreatmentNotFound = apperr.NotFound("TREATMENT_NOT_FOUND", "treatment record not found in this organization")
	ErrTreatmentDeleted  = apperr.Precondition("TREATMENT_DELETED", "treatment or its animal is deleted")
	ErrNotLatest         = apperr.Conflict("NOT_LATEST_VERSION", "only the latest version of a treatment can be amended")
	ErrVersionConflict   = apperr.Conflict("VERSION_CONFLICT", "treatment was amended concurrently; reload and retry")
	ErrNoChanges         = apperr.Invalid("NO_CHANGES", "amend requires at least one changed field")
	ErrInvalidAmount     = apperr.Invalid("INVALID_AMOUNT", "amounts must be zero or positive")
	ErrScheduleRequired  = apperr.Invalid("SCHEDULE_DATE_REQUIRED", "scheduledFor is required when isScheduled is true")
	ErrVisitDateMissing  = apperr.Invalid("VISIT_DATE_REQUIRED", "visitDate is required")
	ErrInvalidPayment    = apperr.Invalid("INVALID_PAYMENT_STATUS", "unknown payment status")

	ErrCorruptChain = errors.New("treatment chain is corrupt")
)

type Input struct {
	AnimalID       string
	VisitDate      time.Time
	ChiefComplaint string
	History        string
	Diagnosis      string
	TreatmentGiven string
	Prescriptions  string
	Notes          string
	Vitals         Vitals

	Amount        *decimal.Decimal
	PaymentStatus *PaymentStatus
	AmountPaid    *decimal.Decimal
	PaidAt        *time.Time

	IsScheduled  bool
	ScheduledFor *time.Time
	FollowUpDate *time.Time
}

// Changes es un update parcial: campo ausente hereda de la versión anterior,
// null explícito limpia.
type Changes struct {
	VisitDate      patch.Field[time.Time]
	ChiefComplaint patch.Field[string]
	History        patch.Field[string]
	Diagnosis      patch.Field[string]
	TreatmentGiven patch.Field[string]
	Prescriptions  patch.Field[string]
	Notes          patch.Field[string]

	TemperatureC    patch.Field[float64]
	HeartRate       patch.Field[int]
	RespiratoryRate patch.Field[int]
	WeightKg        patch.Field[float64]

	Amount        patch.Field[decimal.Decimal]
	PaymentStatus patch.Field[PaymentStatus]
	AmountPaid    patch.Field[decimal.Decimal]
	PaidAt        patch.Field[time.Time]

	IsScheduled  patch.Field[bool]
	ScheduledFor patch.Field[time.Time]
	FollowUpDate patch.Field[time.Time]

	// ExpectedVersion, si viene, debe coincidir con la versión latest actual.
	ExpectedVersion *int
}

func (c Changes) empty() bool {
	fields := []bool{
		c.VisitDate.Present, c.ChiefComplaint.Present, c.History.Present, c.Diagnosis.Present,
		c.TreatmentGiven.Present, c.Prescriptions.Present, c.Notes.Present,
		c.TemperatureC.Present, c.HeartRate.Present, c.RespiratoryRate.Present, c.WeightKg.Present,
		c.Amount.Present, c.PaymentStatus.Present, c.AmountPaid.Present, c.PaidAt.Present,
		c.IsScheduled.Present, c.ScheduledFor.Present, c.FollowUpDate.Present,
	}
	for _, p := range fields {
		if p {
			return false
		}
	}
	return true
}

// NewRecord construye la versión 1 de una cadena.
func NewRecord(orgID, vetID string, in Input, now time.Time) (Record, error) {
	if in.VisitDate.IsZero() {
		return Record{}, ErrVisitDateMissing
	}
	r := Record{
		ID:              uuid.NewString(),
		OrganizationID:  orgID,
		AnimalID:        strings.TrimSpace(in.AnimalID),
		VetID:           vetID,
		Version:         1,
		IsLatestVersion: true,

		VisitDate:      in.VisitDate,
		ChiefComplaint: in.ChiefComplaint,
		History:        in.History,
		Diagnosis:      in.Diagnosis,
		TreatmentGiven: in.TreatmentGiven,
		Prescriptions:  in.Prescriptions,
		Notes:          in.Notes,
		Vitals:         in.Vitals,

		Amount:     in.Amount,
		AmountPaid: in.AmountPaid,
		PaidAt:     in.PaidAt,

		IsScheduled:  in.IsScheduled,
		ScheduledFor: in.ScheduledFor,
		FollowUpDate: in.FollowUpDate,

		CreatedAt: now,
		UpdatedAt: now,
	}
	explicit := in.PaymentStatus != nil
	if explicit {
		r.PaymentStatus = *in.PaymentStatus
	}
	if err := finalize(&r, explicit, now); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Amend crea la versión siguiente copiando latest y aplicando changes. No toca
// latest; el caller lo marca superseded en la misma transacción.
func Amend(latest Record, animalDeleted bool, vetID string, ch Changes, now time.Time) (Record, error) {
	if animalDeleted || latest.IsDeleted {
		return Record{}, ErrTreatmentDeleted
	}
	if !latest.IsLatestVersion {
		return Record{}, ErrNotLatest.WithDetails(map[string]any{"version": latest.Version})
	}
	if ch.ExpectedVersion != nil && *ch.ExpectedVersion != latest.Version {
		return Record{}, ErrVersionConflict.WithDetails(map[string]any{
			"expectedVersion": *ch.ExpectedVersion,
			"currentVersion":  latest.Version,
		})
	}
	if ch.empty() {
		return Record{}, ErrNoChanges
	}

	next := latest
	next.ID = uuid.NewString()
	next.VetID = vetID
	next.Version = latest.Version + 1
	parent := latest.ID
	next.ParentRecordID = &parent
	next.IsLatestVersion = true
	next.CreatedAt = now
	next.UpdatedAt = now

	// Los punteros se copian al aplicar, así que next no comparte memoria con latest.
	next.Vitals = copyVitals(latest.Vitals)
	next.Amount = copyDecimal(latest.Amount)
	next.AmountPaid = copyDecimal(latest.AmountPaid)
	next.PaidAt = copyTime(latest.PaidAt)
	next.ScheduledFor = copyTime(latest.ScheduledFor)
	next.FollowUpDate = copyTime(latest.FollowUpDate)

	ch.VisitDate.Apply(&next.VisitDate)
	ch.ChiefComplaint.Apply(&next.ChiefComplaint)
	ch.History.Apply(&next.History)
	ch.Diagnosis.Apply(&next.Diagnosis)
	ch.TreatmentGiven.Apply(&next.TreatmentGiven)
	ch.Prescriptions.Apply(&next.Prescriptions)
	ch.Notes.Apply(&next.Notes)

	ch.TemperatureC.ApplyPtr(&next.TemperatureC)
	ch.HeartRate.ApplyPtr(&next.HeartRate)
	ch.RespiratoryRate.ApplyPtr(&next.RespiratoryRate)
	ch.WeightKg.ApplyPtr(&next.WeightKg)

	ch.Amount.ApplyPtr(&next.Amount)
	ch.PaymentStatus.Apply(&next.PaymentStatus)
	ch.AmountPaid.ApplyPtr(&next.AmountPaid)
	ch.PaidAt.ApplyPtr(&next.PaidAt)

	ch.IsScheduled.Apply(&next.IsScheduled)
	ch.ScheduledFor.ApplyPtr(&next.ScheduledFor)
	ch.FollowUpDate.ApplyPtr(&next.FollowUpDate)

	if next.VisitDate.IsZero() {
		return Record{}, ErrVisitDateMissing
	}

	// Sin tocar status ni montos se hereda el status; un cambio de montos lo vuelve a derivar.
	explicit := ch.PaymentStatus.Present && ch.PaymentStatus.Value != nil
	if !ch.PaymentStatus.Present && !ch.Amount.Present && !ch.AmountPaid.Present {
		explicit = true
	}
	if err := finalize(&next, explicit, now); err != nil {
		return Record{}, err
	}
	return next, nil
}

// finalize valida montos y scheduling y deriva el estado de pago si no vino explícito.
func finalize(r *Record, explicitStatus bool, now time.Time) error {
	if isNegative(r.Amount) || isNegative(r.AmountPaid) {
		return ErrInvalidAmount
	}
	if r.IsScheduled && r.ScheduledFor == nil {
		return ErrScheduleRequired
	}

	if !explicitStatus && r.PaymentStatus != PaymentWaived {
		r.PaymentStatus = DerivePaymentStatus(r.Amount, r.AmountPaid)
	}
	if !r.PaymentStatus.Valid() {
		return ErrInvalidPayment
	}
	if r.PaymentStatus == PaymentPaid && r.PaidAt == nil {
		t := now
		r.PaidAt = &t
	}
	return nil
}

// DerivePaymentStatus: pagado >= monto => PAID; pagado > 0 => PARTIAL; si no, PENDING.
func DerivePaymentStatus(amount, paid *decimal.Decimal) PaymentStatus {
	p := decimal.Zero
	if paid != nil {
		p = *paid
	}
	if amount != nil && amount.IsPositive() && p.GreaterThanOrEqual(*amount) {
		return PaymentPaid
	}
	if p.IsPositive() {
		return PaymentPartial
	}
	return PaymentPending
}

// ChainReader es lo mínimo que ResolveChain necesita del store.
type ChainReader interface {
	GetByID(ctx context.Context, orgID, id string) (Record, error)
	ListChildren(ctx context.Context, orgID, id string) ([]Record, error)
}

// ResolveChain devuelve todas las versiones de la cadena de id, ordenadas por
// versión. Sube por ParentRecordID hasta la raíz y después baja recolectando
// hijos de cada registro visitado (la versión N+1 apunta a N, no a la raíz).
func ResolveChain(ctx context.Context, rd ChainReader, orgID, id string) ([]Record, error) {
	cur, err := rd.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{cur.ID: {}}
	for cur.ParentRecordID != nil {
		parent, err := rd.GetByID(ctx, orgID, *cur.ParentRecordID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: missing parent %s", ErrCorruptChain, *cur.ParentRecordID)
			}
			return nil, err
		}
		if _, dup := seen[parent.ID]; dup {
			return nil, fmt.Errorf("%w: cycle at %s", ErrCorruptChain, parent.ID)
		}
		seen[parent.ID] = struct{}{}
		cur = parent
	}

	out := []Record{cur}
	collected := map[string]struct{}{cur.ID: {}}
	queue := []string{cur.ID}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		children, err := rd.ListChildren(ctx, orgID, next)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if _, dup := collected[c.ID]; dup {
				continue
			}
			collected[c.ID] = struct{}{}
			out = append(out, c)
			queue = append(queue, c.ID)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// CheckChain verifica versiones 1..n sin huecos y un único latest al final.
func CheckChain(chain []Record) error {
	if len(chain) == 0 {
		return fmt.Errorf("%w: empty", ErrCorruptChain)
	}
	latest := 0
	for i, r := range chain {
		if r.Version != i+1 {
			return fmt.Errorf("%w: expected version %d, got %d", ErrCorruptChain, i+1, r.Version)
		}
		if i == 0 && r.ParentRecordID != nil {
			return fmt.Errorf("%w: root has a parent", ErrCorruptChain)
		}
		if i > 0 && (r.ParentRecordID == nil || *r.ParentRecordID != chain[i-1].ID) {
			return fmt.Errorf("%w: version %d does not point at version %d", ErrCorruptChain, r.Version, i)
		}
		if r.IsLatestVersion {
			latest++
		}
	}
	if latest != 1 || !chain[len(chain)-1].IsLatestVersion {
		return fmt.Errorf("%w: %d latest flags", ErrCorruptChain, latest)
	}
	return nil
}

func isNegative(d *decimal.Decimal) bool { return d != nil && d.IsNegative() }

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyVitals(v Vitals) Vitals {
	cp := v
	if v.TemperatureC != nil {
		x := *v.TemperatureC
		cp.TemperatureC = &x
	}
	if v.HeartRate != nil {
		x := *v.HeartRate
		cp.HeartRate = &x
	}
	if v.RespiratoryRate != nil {
		x := *v.RespiratoryRate
		cp.RespiratoryRate = &x
	}
	if v.WeightKg != nil {
		x := *v.WeightKg
		cp.WeightKg = &x
	}
	return cp
}
