package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"precato/internal/phase/models"
	"precato/pkg/platform/sentinel"
	"precato/pkg/platform/tx"
)

// FeePhasePostgres persists contractual-fee phases. A unique index on
// lower(name) backs the global-name invariant.
type FeePhasePostgres struct {
	db *sql.DB
}

func NewFeePhasePostgres(db *sql.DB) *FeePhasePostgres {
	return &FeePhasePostgres{db: db}
}

const feePhaseColumns = "id, name, description, color, display_order, active, created_at, updated_at"

func (s *FeePhasePostgres) CreateIfNameAvailable(ctx context.Context, phase *models.FeePhase) error {
	_, err := q(ctx, s.db).ExecContext(ctx,
		`INSERT INTO fee_phases (`+feePhaseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		phase.ID, phase.Name, phase.Description, phase.Color,
		phase.DisplayOrder, phase.Active, phase.CreatedAt, phase.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert fee phase: %w", err)
	}
	return nil
}

func (s *FeePhasePostgres) UpdateIfNameAvailable(ctx context.Context, phase *models.FeePhase) error {
	res, err := q(ctx, s.db).ExecContext(ctx,
		`UPDATE fee_phases
		    SET name = $2, description = $3, color = $4, display_order = $5,
		        active = $6, updated_at = $7
		  WHERE id = $1`,
		phase.ID, phase.Name, phase.Description, phase.Color,
		phase.DisplayOrder, phase.Active, phase.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update fee phase: %w", err)
	}
	return rowsAffected(res)
}

func (s *FeePhasePostgres) FindByID(ctx context.Context, id uuid.UUID) (*models.FeePhase, error) {
	row := q(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+feePhaseColumns+` FROM fee_phases WHERE id = $1`, id)
	return scanFeePhase(row)
}

func (s *FeePhasePostgres) List(ctx context.Context) ([]*models.FeePhase, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx,
		`SELECT `+feePhaseColumns+` FROM fee_phases ORDER BY display_order, lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list fee phases: %w", err)
	}
	defer rows.Close()

	var phases []*models.FeePhase
	for rows.Next() {
		phase, err := scanFeePhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, phase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fee phases: %w", err)
	}
	return phases, nil
}

func (s *FeePhasePostgres) Execute(ctx context.Context, id uuid.UUID, validate func(*models.FeePhase) error, mutate func(*models.FeePhase)) (*models.FeePhase, error) {
	run := func(ctx context.Context) (*models.FeePhase, error) {
		row := q(ctx, s.db).QueryRowContext(ctx,
			`SELECT `+feePhaseColumns+` FROM fee_phases WHERE id = $1 FOR UPDATE`, id)
		phase, err := scanFeePhase(row)
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

	var phase *models.FeePhase
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

func (s *FeePhasePostgres) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM fee_phases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete fee phase: %w", err)
	}
	return rowsAffected(res)
}

func scanFeePhase(row rowScanner) (*models.FeePhase, error) {
	var phase models.FeePhase
	err := row.Scan(&phase.ID, &phase.Name, &phase.Description, &phase.Color,
		&phase.DisplayOrder, &phase.Active, &phase.CreatedAt, &phase.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan fee phase: %w", err)
	}
	return &phase, nil
}
