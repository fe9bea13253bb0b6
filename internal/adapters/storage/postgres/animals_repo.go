package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"vet-practice-api/internal/domain/animals"
)

type AnimalsRepo struct {
	q querier
}

var animalUniques = map[string]error{
	"animals_org_microchip_live_uq": animals.ErrMicrochipTaken,
}

const animalColumns = `
	id, organization_id, client_id,
	name, species, breed, sex, color, date_of_birth, weight, microchip_number, notes,
	patient_type, batch_name, batch_size, batch_identifier,
	is_alive, date_of_death, cause_of_death,
	is_deleted, deleted_at, deleted_by, deletion_reason,
	created_by_vet_id, created_at, updated_at`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
	`,
		a.ID,
		a.OrganizationID,
		a.ClientID,
		a.Name,
		a.Species,
		a.Breed,
		a.Sex,
		a.Color,
		toNullDate(a.DateOfBirth),
		a.Weight,
		a.MicrochipNumber,
		a.Notes,
		a.PatientType,
		a.BatchName,
		a.BatchSize,
		a.BatchIdentifier,
		a.IsAlive,
		toNullDate(a.DateOfDeath),
		a.CauseOfDeath,
		a.IsDeleted,
		a.DeletedAt,
		a.DeletedBy,
		a.DeletionReason,
		a.CreatedByVetID,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapUnique(err, animalUniques)
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE animals
		SET
			name = $3,
			species = $4,
			breed = $5,
			sex = $6,
			color = $7,
			date_of_birth = $8,
			weight = $9,
			microchip_number = $10,
			notes = $11,
			patient_type = $12,
			batch_name = $13,
			batch_size = $14,
			batch_identifier = $15,
			is_alive = $16,
			date_of_death = $17,
			cause_of_death = $18,
			is_deleted = $19,
			deleted_at = $20,
			deleted_by = $21,
			deletion_reason = $22,
			updated_at = $23
		WHERE id = $1 AND organization_id = $2
	`,
		a.ID,
		a.OrganizationID,
		a.Name,
		a.Species,
		a.Breed,
		a.Sex,
		a.Color,
		toNullDate(a.DateOfBirth),
		a.Weight,
		a.MicrochipNumber,
		a.Notes,
		a.PatientType,
		a.BatchName,
		a.BatchSize,
		a.BatchIdentifier,
		a.IsAlive,
		toNullDate(a.DateOfDeath),
		a.CauseOfDeath,
		a.IsDeleted,
		a.DeletedAt,
		a.DeletedBy,
		a.DeletionReason,
		a.UpdatedAt,
	)
	if err != nil {
		return mapUnique(err, animalUniques)
	}
	return checkAffected(res, animals.ErrNotFound)
}

func (r *AnimalsRepo) GetByID(ctx context.Context, orgID, id string) (animals.Animal, error) {
	return r.get(ctx, orgID, id, "")
}

func (r *AnimalsRepo) GetForUpdate(ctx context.Context, orgID, id string) (animals.Animal, error) {
	return r.get(ctx, orgID, id, " FOR UPDATE")
}

func (r *AnimalsRepo) get(ctx context.Context, orgID, id, lock string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrNotFound
	}
	row := r.q.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = $1 AND organization_id = $2`+lock, id, orgID)
	a, err := scanAnimal(row)
	if err != nil {
		return animals.Animal{}, notFound(err, animals.ErrNotFound)
	}
	return a, nil
}

func (r *AnimalsRepo) List(ctx context.Context, orgID string, f animals.ListFilter) ([]animals.Animal, error) {
	return r.list(ctx, `
		WHERE organization_id = $1
			AND ($2 = '' OR client_id = $2)
			AND ($3 OR NOT is_deleted)`,
		orgID, f.ClientID, f.IncludeDeleted)
}

func (r *AnimalsRepo) ListByClient(ctx context.Context, orgID, clientID string) ([]animals.Animal, error) {
	return r.list(ctx, `WHERE organization_id = $1 AND client_id = $2`, orgID, clientID)
}

func (r *AnimalsRepo) FindLiveByMicrochip(ctx context.Context, orgID, microchip string) (animals.Animal, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE organization_id = $1 AND microchip_number = $2 AND NOT is_deleted
	`, orgID, microchip)
	a, err := scanAnimal(row)
	if err != nil {
		return animals.Animal{}, notFound(err, animals.ErrNotFound)
	}
	return a, nil
}

func (r *AnimalsRepo) list(ctx context.Context, where string, args ...any) ([]animals.Animal, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals `+where+`
		ORDER BY created_at ASC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnimal(s rowScanner) (animals.Animal, error) {
	var a animals.Animal
	err := s.Scan(
		&a.ID,
		&a.OrganizationID,
		&a.ClientID,
		&a.Name,
		&a.Species,
		&a.Breed,
		&a.Sex,
		&a.Color,
		&a.DateOfBirth,
		&a.Weight,
		&a.MicrochipNumber,
		&a.Notes,
		&a.PatientType,
		&a.BatchName,
		&a.BatchSize,
		&a.BatchIdentifier,
		&a.IsAlive,
		&a.DateOfDeath,
		&a.CauseOfDeath,
		&a.IsDeleted,
		&a.DeletedAt,
		&a.DeletedBy,
		&a.DeletionReason,
		&a.CreatedByVetID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// date_of_birth y date_of_death son DATE, los pasamos como NullTime para simplificar
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
