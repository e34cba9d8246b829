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

// RequerimentoInput carries the fields of a new requerimento.
type RequerimentoInput struct {
	PrecatorioCNJ string        `json:"precatorio_cnj"`
	ClienteCPF    string        `json:"cliente_cpf"`
	Valor         float64       `json:"valor"`
	Desagio       float64       `json:"desagio"`
	Pedido        models.Pedido `json:"pedido"`
	PhaseID       *uuid.UUID    `json:"phase_id,omitempty"`
}

// CreateRequerimento inserts a requerimento for a cliente already linked to
// the precatório, mirroring the alvará linkage rule.
func (s *Service) CreateRequerimento(ctx context.Context, input RequerimentoInput) (*models.Requerimento, error) {
	cpf := brdoc.Normalize(input.ClienteCPF)
	requerimento, err := models.NewRequerimento(uuid.New(), input.PrecatorioCNJ, cpf,
		input.Valor, input.Desagio, input.Pedido, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if input.PhaseID != nil {
		if err := s.checkAssignablePhase(ctx, *input.PhaseID, phasemodels.UsageRequerimento); err != nil {
			return nil, err
		}
		requerimento.PhaseID = input.PhaseID
	}

	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireLinked(ctx, requerimento.PrecatorioCNJ, requerimento.ClienteCPF); err != nil {
			return err
		}
		return storeErr(s.store.CreateRequerimento(ctx, requerimento), "precatorio not found")
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCreated("requerimento")
	s.log(ctx, "requerimento created", "requerimento_id", requerimento.ID,
		"cnj", requerimento.PrecatorioCNJ, "pedido", requerimento.Pedido)
	return requerimento, nil
}

// GetRequerimento returns a requerimento by id.
func (s *Service) GetRequerimento(ctx context.Context, id uuid.UUID) (*models.Requerimento, error) {
	r, err := s.store.FindRequerimento(ctx, id)
	if err != nil {
		return nil, storeErr(err, "requerimento not found")
	}
	return r, nil
}

// ListRequerimentos returns requerimentos, optionally filtered by deferral.
// A requerimento counts as deferido once a phase is assigned; nil deferido
// means no filter.
func (s *Service) ListRequerimentos(ctx context.Context, deferido *bool) ([]*models.Requerimento, error) {
	all, err := s.store.ListRequerimentos(ctx)
	if err != nil {
		return nil, storeErr(err, "requerimentos not found")
	}
	if deferido == nil {
		return all, nil
	}
	out := make([]*models.Requerimento, 0, len(all))
	for _, r := range all {
		if r.HasPhase() == *deferido {
			out = append(out, r)
		}
	}
	return out, nil
}

// DeleteRequerimento removes a requerimento; deleting twice reports not
// found.
func (s *Service) DeleteRequerimento(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteRequerimento(ctx, id); err != nil {
		return storeErr(err, "requerimento not found")
	}
	s.metrics.IncrementDeleted("requerimento")
	s.log(ctx, "requerimento deleted", "requerimento_id", id)
	return nil
}
