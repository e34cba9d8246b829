package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"precato/internal/precatorio/models"
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

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Postgres persists the precatório aggregate family across the precatorios,
// clientes, precatorio_clientes, alvaras and requerimentos tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// ---------------------------------------------------------------------------
// Precatorio
// ---------------------------------------------------------------------------

const precatorioColumns = "cnj, orcamento, origem, valor_de_face, created_at, updated_at"

func (s *Postgres) CreatePrecatorio(ctx context.Context, p *models.Precatorio) error {
	_, err := q(ctx, s.db).ExecContext(ctx,
		`INSERT INTO precatorios (`+precatorioColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.CNJ, p.Orcamento, p.Origem, p.ValorDeFace, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert precatorio: %w", err)
	}
	return nil
}

func (s *Postgres) FindPrecatorio(ctx context.Context, cnj string) (*models.Precatorio, error) {
	row := q(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+precatorioColumns+` FROM precatorios WHERE cnj = $1`, cnj)
	var p models.Precatorio
	err := row.Scan(&p.CNJ, &p.Orcamento, &p.Origem, &p.ValorDeFace, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan precatorio: %w", err)
	}
	return &p, nil
}

func (s *Postgres) DeletePrecatorio(ctx context.Context, cnj string) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM precatorios WHERE cnj = $1`, cnj)
	if err != nil {
		return fmt.Errorf("delete precatorio: %w", err)
	}
	return rowsAffected(res)
}

// ---------------------------------------------------------------------------
// Cliente
// ---------------------------------------------------------------------------

const clienteColumns = "cpf, nome, nascimento, prioridade, created_at, updated_at"

func (s *Postgres) CreateCliente(ctx context.Context, c *models.Cliente) error {
	_, err := q(ctx, s.db).ExecContext(ctx,
		`INSERT INTO clientes (`+clienteColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.CPF, c.Nome, c.Nascimento, c.Prioridade, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert cliente: %w", err)
	}
	return nil
}

func (s *Postgres) FindCliente(ctx context.Context, cpf string) (*models.Cliente, error) {
	row := q(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+clienteColumns+` FROM clientes WHERE cpf = $1`, cpf)
	var c models.Cliente
	err := row.Scan(&c.CPF, &c.Nome, &c.Nascimento, &c.Prioridade, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan cliente: %w", err)
	}
	return &c, nil
}

func (s *Postgres) DeleteCliente(ctx context.Context, cpf string) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM clientes WHERE cpf = $1`, cpf)
	if err != nil {
		return fmt.Errorf("delete cliente: %w", err)
	}
	return rowsAffected(res)
}

// ---------------------------------------------------------------------------
// Precatorio <-> Cliente links
// ---------------------------------------------------------------------------

func (s *Postgres) Link(ctx context.Context, cnj, cpf string) error {
	_, err := q(ctx, s.db).ExecContext(ctx,
		`INSERT INTO precatorio_clientes (precatorio_cnj, cliente_cpf) VALUES ($1, $2)`,
		cnj, cpf,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("link cliente: %w", err)
	}
	return nil
}

func (s *Postgres) Unlink(ctx context.Context, cnj, cpf string) error {
	res, err := q(ctx, s.db).ExecContext(ctx,
		`DELETE FROM precatorio_clientes WHERE precatorio_cnj = $1 AND cliente_cpf = $2`,
		cnj, cpf,
	)
	if err != nil {
		return fmt.Errorf("unlink cliente: %w", err)
	}
	return rowsAffected(res)
}

func (s *Postgres) IsLinked(ctx context.Context, cnj, cpf string) (bool, error) {
	var linked bool
	err := q(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM precatorio_clientes WHERE precatorio_cnj = $1 AND cliente_cpf = $2
		 )`, cnj, cpf).Scan(&linked)
	if err != nil {
		return false, fmt.Errorf("check link: %w", err)
	}
	return linked, nil
}

func (s *Postgres) CountClientesByPrecatorio(ctx context.Context, cnj string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM precatorio_clientes WHERE precatorio_cnj = $1`, cnj)
}

func (s *Postgres) CountPrecatoriosByCliente(ctx context.Context, cpf string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM precatorio_clientes WHERE cliente_cpf = $1`, cpf)
}

// ---------------------------------------------------------------------------
// Alvara
// ---------------------------------------------------------------------------

const alvaraColumns = "id, precatorio_cnj, cliente_cpf, tipo, valor_principal, honorarios_contratuais, honorarios_sucumbenciais, phase_id, fee_phase_id, created_at, updated_at"

func (s *Postgres) CreateAlvara(ctx context.Context, a *models.Alvara) error {
	_, err := q(ctx, s.db).ExecContext(ctx,
		`INSERT INTO alvaras (`+alvaraColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.PrecatorioCNJ, a.ClienteCPF, a.Tipo, a.ValorPrincipal,
		a.HonorariosContratuais, a.HonorariosSucumbenciais, a.PhaseID, a.FeePhaseID,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alvara: %w", err)
	}
	return nil
}

func (s *Postgres) FindAlvara(ctx context.Context, id uuid.UUID) (*models.Alvara, error) {
	row := q(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+alvaraColumns+` FROM alvaras WHERE id = $1`, id)
	var a models.Alvara
	var phaseID, feePhaseID uuid.NullUUID
	err := row.Scan(&a.ID, &a.PrecatorioCNJ, &a.ClienteCPF, &a.Tipo, &a.ValorPrincipal,
		&a.HonorariosContratuais, &a.HonorariosSucumbenciais, &phaseID, &feePhaseID,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan alvara: %w", err)
	}
	a.PhaseID = fromNullUUID(phaseID)
	a.FeePhaseID = fromNullUUID(feePhaseID)
	return &a, nil
}

func (s *Postgres) DeleteAlvara(ctx context.Context, id uuid.UUID) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM alvaras WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete alvara: %w", err)
	}
	return rowsAffected(res)
}

func (s *Postgres) CountAlvarasByPhase(ctx context.Context, phaseID uuid.UUID) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM alvaras WHERE phase_id = $1`, phaseID)
}

func (s *Postgres) CountAlvarasByFeePhase(ctx context.Context, feePhaseID uuid.UUID) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM alvaras WHERE fee_phase_id = $1`, feePhaseID)
}

func (s *Postgres) CountAlvarasByPrecatorio(ctx context.Context, cnj string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM alvaras WHERE precatorio_cnj = $1`, cnj)
}

func (s *Postgres) CountAlvarasByCliente(ctx context.Context, cpf string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM alvaras WHERE cliente_cpf = $1`, cpf)
}

func (s *Postgres) CountAlvarasByLink(ctx context.Context, cnj, cpf string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM alvaras WHERE precatorio_cnj = $1 AND cliente_cpf = $2`, cnj, cpf)
}

// ---------------------------------------------------------------------------
// Requerimento
// ---------------------------------------------------------------------------

const requerimentoColumns = "id, precatorio_cnj, cliente_cpf, valor, desagio, pedido, phase_id, created_at, updated_at"

func (s *Postgres) CreateRequerimento(ctx context.Context, r *models.Requerimento) error {
	_, err := q(ctx, s.db).ExecContext(ctx,
		`INSERT INTO requerimentos (`+requerimentoColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.PrecatorioCNJ, r.ClienteCPF, r.Valor, r.Desagio, r.Pedido, r.PhaseID,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert requerimento: %w", err)
	}
	return nil
}

func (s *Postgres) FindRequerimento(ctx context.Context, id uuid.UUID) (*models.Requerimento, error) {
	row := q(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+requerimentoColumns+` FROM requerimentos WHERE id = $1`, id)
	return scanRequerimento(row)
}

func (s *Postgres) DeleteRequerimento(ctx context.Context, id uuid.UUID) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM requerimentos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete requerimento: %w", err)
	}
	return rowsAffected(res)
}

func (s *Postgres) ListRequerimentos(ctx context.Context) ([]*models.Requerimento, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx,
		`SELECT `+requerimentoColumns+` FROM requerimentos ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list requerimentos: %w", err)
	}
	defer rows.Close()

	var out []*models.Requerimento
	for rows.Next() {
		r, err := scanRequerimento(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requerimentos: %w", err)
	}
	return out, nil
}

func (s *Postgres) CountRequerimentosByPhase(ctx context.Context, phaseID uuid.UUID) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM requerimentos WHERE phase_id = $1`, phaseID)
}

func (s *Postgres) CountRequerimentosByPrecatorio(ctx context.Context, cnj string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM requerimentos WHERE precatorio_cnj = $1`, cnj)
}

func (s *Postgres) CountRequerimentosByCliente(ctx context.Context, cpf string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM requerimentos WHERE cliente_cpf = $1`, cpf)
}

func (s *Postgres) CountRequerimentosByLink(ctx context.Context, cnj, cpf string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM requerimentos WHERE precatorio_cnj = $1 AND cliente_cpf = $2`, cnj, cpf)
}

// ---------------------------------------------------------------------------
// Dashboard totals
// ---------------------------------------------------------------------------

func (s *Postgres) CountPrecatorios(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM precatorios`)
}

func (s *Postgres) CountClientes(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM clientes`)
}

func (s *Postgres) CountAlvaras(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM alvaras`)
}

func (s *Postgres) CountRequerimentos(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM requerimentos`)
}

func (s *Postgres) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := q(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequerimento(row rowScanner) (*models.Requerimento, error) {
	var r models.Requerimento
	var phaseID uuid.NullUUID
	err := row.Scan(&r.ID, &r.PrecatorioCNJ, &r.ClienteCPF, &r.Valor, &r.Desagio,
		&r.Pedido, &phaseID, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan requerimento: %w", err)
	}
	r.PhaseID = fromNullUUID(phaseID)
	return &r, nil
}

func fromNullUUID(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
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
