package service

import (
	"context"

	"github.com/google/uuid"

	phasemodels "precato/internal/phase/models"
	"precato/internal/precatorio/models"
	"precato/pkg/brdoc"
	dErrors "precato/pkg/domain-errors"
	"precato/pkg/requestcontext"
)

// AlvaraInput carries the fields of a new alvará. Phase references are
// optional; when present they must point at active phases assignable to
// alvarás.
type AlvaraInput struct {
	PrecatorioCNJ           string            `json:"precatorio_cnj"`
	ClienteCPF              string            `json:"cliente_cpf"`
	Tipo                    models.AlvaraTipo `json:"tipo"`
	ValorPrincipal          float64           `json:"valor_principal"`
	HonorariosContratuais   float64           `json:"honorarios_contratuais"`
	HonorariosSucumbenciais float64           `json:"honorarios_sucumbenciais"`
	PhaseID                 *uuid.UUID        `json:"phase_id,omitempty"`
	FeePhaseID              *uuid.UUID        `json:"fee_phase_id,omitempty"`
}

// CreateAlvara inserts an alvará for a cliente already linked to the
// precatório. An unlinked cliente is rejected with a validation error, not a
// missing-record error, because both records exist.
func (s *Service) CreateAlvara(ctx context.Context, input AlvaraInput) (*models.Alvara, error) {
	cpf := brdoc.Normalize(input.ClienteCPF)
	alvara, err := models.NewAlvara(uuid.New(), input.PrecatorioCNJ, cpf, input.Tipo,
		input.ValorPrincipal, input.HonorariosContratuais, input.HonorariosSucumbenciais,
		requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if input.PhaseID != nil {
		if err := s.checkAssignablePhase(ctx, *input.PhaseID, phasemodels.UsageAlvara); err != nil {
			return nil, err
		}
		alvara.PhaseID = input.PhaseID
	}
	if input.FeePhaseID != nil {
		if err := s.checkAssignableFeePhase(ctx, *input.FeePhaseID); err != nil {
			return nil, err
		}
		alvara.FeePhaseID = input.FeePhaseID
	}

	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireLinked(ctx, alvara.PrecatorioCNJ, alvara.ClienteCPF); err != nil {
			return err
		}
		return storeErr(s.store.CreateAlvara(ctx, alvara), "precatorio not found")
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCreated("alvara")
	s.log(ctx, "alvara created", "alvara_id", alvara.ID, "cnj", alvara.PrecatorioCNJ, "tipo", alvara.Tipo)
	return alvara, nil
}

// GetAlvara returns an alvará by id.
func (s *Service) GetAlvara(ctx context.Context, id uuid.UUID) (*models.Alvara, error) {
	a, err := s.store.FindAlvara(ctx, id)
	if err != nil {
		return nil, storeErr(err, "alvara not found")
	}
	return a, nil
}

// DeleteAlvara removes an alvará. Nothing references alvarás, so no guard
// applies; deleting twice reports not found.
func (s *Service) DeleteAlvara(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteAlvara(ctx, id); err != nil {
		return storeErr(err, "alvara not found")
	}
	s.metrics.IncrementDeleted("alvara")
	s.log(ctx, "alvara deleted", "alvara_id", id)
	return nil
}

// requireLinked verifies the precatório and cliente exist and are linked.
func (s *Service) requireLinked(ctx context.Context, cnj, cpf string) error {
	if _, err := s.store.FindPrecatorio(ctx, cnj); err != nil {
		return storeErr(err, "precatorio not found")
	}
	if _, err := s.store.FindCliente(ctx, cpf); err != nil {
		return storeErr(err, "cliente not found")
	}
	linked, err := s.store.IsLinked(ctx, cnj, cpf)
	if err != nil {
		return storeErr(err, "precatorio not found")
	}
	if !linked {
		return dErrors.New(dErrors.CodeValidation, "cliente is not linked to this precatorio")
	}
	return nil
}

// checkAssignablePhase rejects phase references that are inactive or scoped
// away from the given usage.
func (s *Service) checkAssignablePhase(ctx context.Context, id uuid.UUID, usage phasemodels.Usage) error {
	phase, err := s.phases.GetPhase(ctx, id)
	if err != nil {
		return err
	}
	if !phase.Active {
		return dErrors.Newf(dErrors.CodeValidation, "phase %q is inactive", phase.Name)
	}
	if !phase.UsageScope.Covers(usage) {
		return dErrors.Newf(dErrors.CodeValidation, "phase %q is not assignable to %s records", phase.Name, usage)
	}
	return nil
}

func (s *Service) checkAssignableFeePhase(ctx context.Context, id uuid.UUID) error {
	phase, err := s.phases.GetFeePhase(ctx, id)
	if err != nil {
		return err
	}
	if !phase.Active {
		return dErrors.Newf(dErrors.CodeValidation, "fee phase %q is inactive", phase.Name)
	}
	return nil
}
