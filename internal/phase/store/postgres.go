package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"precato/internal/phase/models"
	"precato/pkg/platform/sentinel"
	"precato/pkg/platform/tx"
)

// querier is satisfied by both *sql.DB and *sql.Tx so store methods join an
// enclosing transaction when one is carried in the context.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func q(ctx context.Context, db *sql.DB) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return db
}

// uniqueViolation is the postgres error code raised by unique indexes.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Postgres persists phases in the phases table. A unique index on
// (lower(name), usage_scope) backs the scoped-name invariant.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const phaseColumns = "id, name, description, color, usage_scope, display_order, active, created_at, updated_at"

func (s *Postgres) CreateIfNameAvailable(ctx context.Context, phase *models.Phase) error {
	_, err := q(ctx, s.db).ExecContext(ctx,
		`INSERT INTO phases (`+phaseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		phase.ID, phase.Name, phase.Description, phase.Color, phase.UsageScope,
		phase.DisplayOrder, phase.Active, phase.CreatedAt, phase.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert phase: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateIfNameAvailable(ctx context.Context, phase *models.Phase) error {
	res, err := q(ctx, s.db).ExecContext(ctx,
		`UPDATE phases
		    SET name = $2, description = $3, color = $4, usage_scope = $5,
		        display_order = $6, active = $7, updated_at = $8
		  WHERE id = $1`,
		phase.ID, phase.Name, phase.Description, phase.Color, phase.UsageScope,
		phase.DisplayOrder, phase.Active, phase.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update phase: %w", err)
	}
	return rowsAffected(res)
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Phase, error) {
	row := q(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+phaseColumns+` FROM phases WHERE id = $1`, id)
	return scanPhase(row)
}

func (s *Postgres) List(ctx context.Context) ([]*models.Phase, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx,
		`SELECT `+phaseColumns+` FROM phases
		  ORDER BY display_order, usage_scope, lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	var phases []*models.Phase
	for rows.Next() {
		phase, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, phase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	return phases, nil
}

// Execute locks the row, validates, mutates, and writes back in one
// transaction so toggles cannot interleave with concurrent edits.
func (s *Postgres) Execute(ctx context.Context, id uuid.UUID, validate func(*models.Phase) error, mutate func(*models.Phase)) (*models.Phase, error) {
	run := func(ctx context.Context) (*models.Phase, error) {
		row := q(ctx, s.db).QueryRowContext(ctx,
			`SELECT `+phaseColumns+` FROM phases WHERE id = $1 FOR UPDATE`, id)
		phase, err := scanPhase(row)
		if err != nil {
			return nil, err
		}
		if validate != nil {
			if err := validate(phase); err != nil {
				return nil, err
			}
		}
		mutate(phase)
		if err := s.UpdateIfNameAvailable(ctx, phase); err != nil {
			return nil, err
		}
		return phase, nil
	}

	if _, ok := tx.From(ctx); ok {
		return run(ctx)
	}

	var phase *models.Phase
	err := tx.NewSQLRunner(s.db).RunInTx(ctx, func(ctx context.Context) error {
		var err error
		phase, err = run(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return phase, nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM phases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete phase: %w", err)
	}
	return rowsAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhase(row rowScanner) (*models.Phase, error) {
	var phase models.Phase
	err := row.Scan(&phase.ID, &phase.Name, &phase.Description, &phase.Color,
		&phase.UsageScope, &phase.DisplayOrder, &phase.Active, &phase.CreatedAt, &phase.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan phase: %w", err)
	}
	return &phase, nil
}

func rowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
