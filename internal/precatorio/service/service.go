package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	phasemodels "precato/internal/phase/models"
	precatoriometrics "precato/internal/precatorio/metrics"
	"precato/internal/precatorio/models"
	dErrors "precato/pkg/domain-errors"
	"precato/pkg/platform/sentinel"
	"precato/pkg/platform/tx"
)

// Store is the persistence port for the precatório aggregate family. The
// family shares one port because referential guards count across entities and
// must see a single consistent snapshot.
type Store interface {
	CreatePrecatorio(ctx context.Context, p *models.Precatorio) error
	FindPrecatorio(ctx context.Context, cnj string) (*models.Precatorio, error)
	DeletePrecatorio(ctx context.Context, cnj string) error

	CreateCliente(ctx context.Context, c *models.Cliente) error
	FindCliente(ctx context.Context, cpf string) (*models.Cliente, error)
	DeleteCliente(ctx context.Context, cpf string) error

	Link(ctx context.Context, cnj, cpf string) error
	Unlink(ctx context.Context, cnj, cpf string) error
	IsLinked(ctx context.Context, cnj, cpf string) (bool, error)
	CountClientesByPrecatorio(ctx context.Context, cnj string) (int, error)
	CountPrecatoriosByCliente(ctx context.Context, cpf string) (int, error)

	CreateAlvara(ctx context.Context, a *models.Alvara) error
	FindAlvara(ctx context.Context, id uuid.UUID) (*models.Alvara, error)
	DeleteAlvara(ctx context.Context, id uuid.UUID) error
	CountAlvarasByPrecatorio(ctx context.Context, cnj string) (int, error)
	CountAlvarasByCliente(ctx context.Context, cpf string) (int, error)
	CountAlvarasByLink(ctx context.Context, cnj, cpf string) (int, error)

	CreateRequerimento(ctx context.Context, r *models.Requerimento) error
	FindRequerimento(ctx context.Context, id uuid.UUID) (*models.Requerimento, error)
	DeleteRequerimento(ctx context.Context, id uuid.UUID) error
	ListRequerimentos(ctx context.Context) ([]*models.Requerimento, error)
	CountRequerimentosByPrecatorio(ctx context.Context, cnj string) (int, error)
	CountRequerimentosByCliente(ctx context.Context, cpf string) (int, error)
	CountRequerimentosByLink(ctx context.Context, cnj, cpf string) (int, error)

	CountPrecatorios(ctx context.Context) (int, error)
	CountClientes(ctx context.Context) (int, error)
	CountAlvaras(ctx context.Context) (int, error)
	CountRequerimentos(ctx context.Context) (int, error)
}

// PhaseDirectory resolves phase references when alvarás and requerimentos are
// created. Satisfied by the phase service.
type PhaseDirectory interface {
	GetPhase(ctx context.Context, id uuid.UUID) (*phasemodels.Phase, error)
	GetFeePhase(ctx context.Context, id uuid.UUID) (*phasemodels.FeePhase, error)
}

// Service orchestrates precatórios, clientes, alvarás and requerimentos:
// document-validated registration, cliente linking, and deletion guarded by
// referential integrity.
type Service struct {
	store   Store
	phases  PhaseDirectory
	txr     tx.Runner
	logger  *slog.Logger
	metrics *precatoriometrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *precatoriometrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTxRunner sets the atomic boundary for guard-then-mutate sequences.
func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) { s.txr = r }
}

func New(store Store, phases PhaseDirectory, opts ...Option) *Service {
	s := &Service{store: store, phases: phases}
	for _, opt := range opts {
		opt(s)
	}
	if s.txr == nil {
		s.txr = tx.NewMemoryRunner()
	}
	return s
}

// storeErr translates infrastructure sentinels into domain errors. Domain
// errors already carrying a code pass through untouched.
func storeErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "record already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
	}
}

func (s *Service) log(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}
