package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	phasemetrics "precato/internal/phase/metrics"
	"precato/internal/phase/models"
	dErrors "precato/pkg/domain-errors"
	"precato/pkg/platform/sentinel"
	"precato/pkg/platform/tx"
)

// PhaseStore is the persistence port for main phases. The availability
// variants perform the case-insensitive scoped-name check and the write as
// one atomic operation.
type PhaseStore interface {
	CreateIfNameAvailable(ctx context.Context, phase *models.Phase) error
	UpdateIfNameAvailable(ctx context.Context, phase *models.Phase) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Phase, error)
	List(ctx context.Context) ([]*models.Phase, error)
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Phase) error, mutate func(*models.Phase)) (*models.Phase, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FeePhaseStore is the persistence port for contractual-fee phases.
type FeePhaseStore interface {
	CreateIfNameAvailable(ctx context.Context, phase *models.FeePhase) error
	UpdateIfNameAvailable(ctx context.Context, phase *models.FeePhase) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.FeePhase, error)
	List(ctx context.Context) ([]*models.FeePhase, error)
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.FeePhase) error, mutate func(*models.FeePhase)) (*models.FeePhase, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UsageCounter reports how many dependent records reference a phase. Backed
// by the precatório store, which owns alvarás and requerimentos.
type UsageCounter interface {
	CountAlvarasByPhase(ctx context.Context, phaseID uuid.UUID) (int, error)
	CountRequerimentosByPhase(ctx context.Context, phaseID uuid.UUID) (int, error)
	CountAlvarasByFeePhase(ctx context.Context, feePhaseID uuid.UUID) (int, error)
}

// Service orchestrates the phase registry: creation, edits, activation
// toggles, listings, and usage-guarded deletion.
type Service struct {
	phases    PhaseStore
	feePhases FeePhaseStore
	usage     UsageCounter
	txr       tx.Runner
	logger    *slog.Logger
	metrics   *phasemetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *phasemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTxRunner sets the atomic boundary for guard-then-mutate sequences.
// Postgres deployments pass a SQL runner; the default serializes in memory.
func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) { s.txr = r }
}

func New(phases PhaseStore, feePhases FeePhaseStore, usage UsageCounter, opts ...Option) *Service {
	s := &Service{phases: phases, feePhases: feePhases, usage: usage}
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
		return dErrors.New(dErrors.CodeConflict, "name is already in use")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
	}
}

func (s *Service) log(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}
