package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/animals"
	"vet-practice-api/internal/domain/clients"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/treatments"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/ports/store"
)

// querier lo cumplen *sql.DB y *sql.Tx; los repos no saben si están en una transacción.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type tx struct {
	q querier
}

func (t *tx) Vets() vets.Repository             { return &VetsRepo{q: t.q} }
func (t *tx) Orgs() orgs.Repository             { return &OrgsRepo{q: t.q} }
func (t *tx) Clients() clients.Repository       { return &ClientsRepo{q: t.q} }
func (t *tx) Animals() animals.Repository       { return &AnimalsRepo{q: t.q} }
func (t *tx) Treatments() treatments.Repository { return &TreatmentsRepo{q: t.q} }

// RunInTx corre fn en READ COMMITTED. Los GetForUpdate toman los locks de fila
// que serializan escrituras sobre la misma jerarquía.
func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if err = fn(&tx{q: sqlTx}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) Vets() vets.Repository { return &VetsRepo{q: s.db} }

func (s *Store) Activity() activity.Repository { return &ActivityRepo{q: s.db} }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
