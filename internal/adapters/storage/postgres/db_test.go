package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"vet-practice-api/internal/domain/animals"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapUnique(t *testing.T) {
	chip := &pgconn.PgError{Code: "23505", ConstraintName: "animals_org_microchip_live_uq"}
	other := &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "animals_org_microchip_live_uq"}

	assert.NoError(t, mapUnique(nil, animalUniques))
	assert.ErrorIs(t, mapUnique(chip, animalUniques), animals.ErrMicrochipTaken)
	assert.ErrorIs(t, mapUnique(fmt.Errorf("insert: %w", chip), animalUniques), animals.ErrMicrochipTaken)
	assert.Same(t, other, mapUnique(other, animalUniques))
	assert.Same(t, fk, mapUnique(fk, animalUniques))
}

func TestNotFound(t *testing.T) {
	sentinel := errors.New("missing")
	assert.Equal(t, sentinel, notFound(sql.ErrNoRows, sentinel))

	boom := errors.New("boom")
	assert.Equal(t, boom, notFound(boom, sentinel))
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "0001_init.up.sql")
	assert.Contains(t, names, "0001_init.down.sql")
}
