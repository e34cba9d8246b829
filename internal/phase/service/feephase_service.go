package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"precato/internal/phase/models"
	dErrors "precato/pkg/domain-errors"
	"precato/pkg/requestcontext"
)

// FeePhaseInput carries the editable fields of a contractual-fee phase.
type FeePhaseInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Color        string `json:"color"`
	DisplayOrder int    `json:"display_order"`
}

// FeeToggleResult mirrors ToggleResult for fee phases.
type FeeToggleResult struct {
	Phase     *models.FeePhase `json:"phase"`
	Activated bool             `json:"activated"`
}

// CreateFeePhase validates the input and inserts the fee phase under the
// global-name uniqueness check.
func (s *Service) CreateFeePhase(ctx context.Context, input FeePhaseInput) (*models.FeePhase, error) {
	phase, err := models.NewFeePhase(uuid.New(), input.Name, input.Description, input.Color,
		input.DisplayOrder, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.feePhases.CreateIfNameAvailable(ctx, phase); err != nil {
			return duplicateFeePhaseName(err, phase.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCreated()
	s.log(ctx, "fee phase created", "fee_phase_id", phase.ID, "name", phase.Name)
	return phase, nil
}

// UpdateFeePhase applies the input to an existing fee phase, excluding the
// phase itself from the uniqueness check.
func (s *Service) UpdateFeePhase(ctx context.Context, id uuid.UUID, input FeePhaseInput) (*models.FeePhase, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "fee phase name cannot be empty")
	}
	if input.Color != "" {
		if err := models.ValidateColor(input.Color); err != nil {
			return nil, err
		}
	}
	if input.DisplayOrder < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "display order cannot be negative")
	}

	var updated *models.FeePhase
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		phase, err := s.feePhases.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, "fee phase not found")
		}
		phase.Name = name
		phase.Description = input.Description
		if input.Color != "" {
			phase.Color = input.Color
		}
		phase.DisplayOrder = input.DisplayOrder
		phase.UpdatedAt = requestcontext.Now(ctx)

		if err := s.feePhases.UpdateIfNameAvailable(ctx, phase); err != nil {
			return duplicateFeePhaseName(err, phase.Name)
		}
		updated = phase
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx, "fee phase updated", "fee_phase_id", updated.ID, "name", updated.Name)
	return updated, nil
}

// ToggleFeePhase flips exactly the activation flag of a fee phase.
func (s *Service) ToggleFeePhase(ctx context.Context, id uuid.UUID) (*FeeToggleResult, error) {
	now := requestcontext.Now(ctx)
	phase, err := s.feePhases.Execute(ctx, id, nil, func(p *models.FeePhase) {
		p.ApplyToggle(now)
	})
	if err != nil {
		return nil, storeErr(err, "fee phase not found")
	}

	s.log(ctx, "fee phase toggled", "fee_phase_id", phase.ID, "name", phase.Name, "active", phase.Active)
	return &FeeToggleResult{Phase: phase, Activated: phase.Active}, nil
}

// GetFeePhase returns a fee phase by id.
func (s *Service) GetFeePhase(ctx context.Context, id uuid.UUID) (*models.FeePhase, error) {
	phase, err := s.feePhases.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "fee phase not found")
	}
	return phase, nil
}

// ListFeePhases returns every fee phase ordered by display order, then name.
func (s *Service) ListFeePhases(ctx context.Context) ([]*models.FeePhase, error) {
	phases, err := s.feePhases.List(ctx)
	if err != nil {
		return nil, storeErr(err, "fee phases not found")
	}
	return phases, nil
}

// AssignableFeePhases returns only active fee phases; the choice list for
// fresh alvarás.
func (s *Service) AssignableFeePhases(ctx context.Context) ([]*models.FeePhase, error) {
	phases, err := s.ListFeePhases(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.FeePhase, 0, len(phases))
	for _, p := range phases {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

// DeleteFeePhase removes a fee phase only when no alvará still references
// it. Only alvarás carry a fee phase, so that is the single guarded category.
func (s *Service) DeleteFeePhase(ctx context.Context, id uuid.UUID) (*models.FeePhase, error) {
	var deleted *models.FeePhase
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		phase, err := s.feePhases.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, "fee phase not found")
		}

		count, err := s.usage.CountAlvarasByFeePhase(ctx, id)
		if err != nil {
			return storeErr(err, "fee phase not found")
		}
		if count > 0 {
			s.metrics.IncrementDeleteBlocked("alvaras")
			return dErrors.NewInUse(`fee phase "`+phase.Name+`"`, "alvaras", count)
		}

		if err := s.feePhases.Delete(ctx, id); err != nil {
			return storeErr(err, "fee phase not found")
		}
		deleted = phase
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementDeleted()
	s.log(ctx, "fee phase deleted", "fee_phase_id", deleted.ID, "name", deleted.Name)
	return deleted, nil
}

func duplicateFeePhaseName(err error, name string) error {
	if dErrors.HasCode(storeErr(err, ""), dErrors.CodeConflict) {
		return dErrors.Newf(dErrors.CodeConflict, "a fee phase named %q already exists", name)
	}
	return storeErr(err, "fee phase not found")
}
