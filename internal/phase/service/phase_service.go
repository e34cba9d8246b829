package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"precato/internal/phase/models"
	dErrors "precato/pkg/domain-errors"
	"precato/pkg/requestcontext"
)

// PhaseInput carries the editable fields of a phase. Zero values fall back
// to the model defaults (color, scope "both", order 0).
type PhaseInput struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Color        string            `json:"color"`
	UsageScope   models.UsageScope `json:"usage_scope"`
	DisplayOrder int               `json:"display_order"`
}

// ToggleResult reports which direction an activation flip went so callers
// can surface a human-readable confirmation.
type ToggleResult struct {
	Phase     *models.Phase `json:"phase"`
	Activated bool          `json:"activated"`
}

// CreatePhase validates the input and inserts the phase; the scoped-name
// uniqueness check and the insert are one atomic unit.
func (s *Service) CreatePhase(ctx context.Context, input PhaseInput) (*models.Phase, error) {
	phase, err := models.NewPhase(uuid.New(), input.Name, input.Description, input.Color,
		input.UsageScope, input.DisplayOrder, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.phases.CreateIfNameAvailable(ctx, phase); err != nil {
			return duplicatePhaseName(err, phase.Name, phase.UsageScope)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCreated()
	s.log(ctx, "phase created", "phase_id", phase.ID, "name", phase.Name, "usage_scope", phase.UsageScope)
	return phase, nil
}

// UpdatePhase applies the input to an existing phase. The uniqueness check
// excludes the phase being edited.
func (s *Service) UpdatePhase(ctx context.Context, id uuid.UUID, input PhaseInput) (*models.Phase, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "phase name cannot be empty")
	}
	color := input.Color
	if color != "" {
		if err := models.ValidateColor(color); err != nil {
			return nil, err
		}
	}
	if input.UsageScope != "" && !input.UsageScope.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "usage scope must be alvara, requerimento or both")
	}
	if input.DisplayOrder < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "display order cannot be negative")
	}

	var updated *models.Phase
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		phase, err := s.phases.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, "phase not found")
		}
		phase.Name = name
		phase.Description = input.Description
		if color != "" {
			phase.Color = color
		}
		if input.UsageScope != "" {
			phase.UsageScope = input.UsageScope
		}
		phase.DisplayOrder = input.DisplayOrder
		phase.UpdatedAt = requestcontext.Now(ctx)

		if err := s.phases.UpdateIfNameAvailable(ctx, phase); err != nil {
			return duplicatePhaseName(err, phase.Name, phase.UsageScope)
		}
		updated = phase
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx, "phase updated", "phase_id", updated.ID, "name", updated.Name)
	return updated, nil
}

// TogglePhase flips exactly the activation flag. Name, color, scope and
// order are immutable on toggle, so no validation is re-run.
func (s *Service) TogglePhase(ctx context.Context, id uuid.UUID) (*ToggleResult, error) {
	now := requestcontext.Now(ctx)
	phase, err := s.phases.Execute(ctx, id, nil, func(p *models.Phase) {
		p.ApplyToggle(now)
	})
	if err != nil {
		return nil, storeErr(err, "phase not found")
	}

	s.log(ctx, "phase toggled", "phase_id", phase.ID, "name", phase.Name, "active", phase.Active)
	return &ToggleResult{Phase: phase, Activated: phase.Active}, nil
}

// GetPhase returns a phase by id.
func (s *Service) GetPhase(ctx context.Context, id uuid.UUID) (*models.Phase, error) {
	phase, err := s.phases.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "phase not found")
	}
	return phase, nil
}

// ListPhases returns every phase, active or not, ordered by display order,
// usage scope, then name. Callers filter by activation themselves so the
// activation counters stay derivable from one fetch.
func (s *Service) ListPhases(ctx context.Context) ([]*models.Phase, error) {
	phases, err := s.phases.List(ctx)
	if err != nil {
		return nil, storeErr(err, "phases not found")
	}
	return phases, nil
}

// PhasesFor returns phases attachable to the given usage, active or not.
// Editors need inactive phases too, to re-display one already assigned.
func (s *Service) PhasesFor(ctx context.Context, usage models.Usage) ([]*models.Phase, error) {
	if !usage.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "usage must be alvara or requerimento")
	}
	phases, err := s.ListPhases(ctx)
	if err != nil {
		return nil, err
	}
	return filterPhases(phases, func(p *models.Phase) bool {
		return p.UsageScope.Covers(usage)
	}), nil
}

// AssignablePhasesFor returns only active phases for the given usage; the
// choice list for fresh records.
func (s *Service) AssignablePhasesFor(ctx context.Context, usage models.Usage) ([]*models.Phase, error) {
	phases, err := s.PhasesFor(ctx, usage)
	if err != nil {
		return nil, err
	}
	return filterPhases(phases, func(p *models.Phase) bool { return p.Active }), nil
}

// PhaseStats derives activation counters from a single listing.
func (s *Service) PhaseStats(ctx context.Context) (models.PhaseStats, error) {
	phases, err := s.ListPhases(ctx)
	if err != nil {
		return models.PhaseStats{}, err
	}
	return models.StatsOf(phases), nil
}

// DeletePhase removes a phase only when no alvará or requerimento still
// references it. Alvarás are checked strictly before requerimentos; the
// first non-empty category decides the rejection message. The whole guard
// plus the delete run in one atomic boundary.
func (s *Service) DeletePhase(ctx context.Context, id uuid.UUID) (*models.Phase, error) {
	var deleted *models.Phase
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		phase, err := s.phases.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, "phase not found")
		}

		count, err := s.usage.CountAlvarasByPhase(ctx, id)
		if err != nil {
			return storeErr(err, "phase not found")
		}
		if count > 0 {
			s.metrics.IncrementDeleteBlocked("alvaras")
			return dErrors.NewInUse(`phase "`+phase.Name+`"`, "alvaras", count)
		}

		count, err = s.usage.CountRequerimentosByPhase(ctx, id)
		if err != nil {
			return storeErr(err, "phase not found")
		}
		if count > 0 {
			s.metrics.IncrementDeleteBlocked("requerimentos")
			return dErrors.NewInUse(`phase "`+phase.Name+`"`, "requerimentos", count)
		}

		if err := s.phases.Delete(ctx, id); err != nil {
			return storeErr(err, "phase not found")
		}
		deleted = phase
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementDeleted()
	s.log(ctx, "phase deleted", "phase_id", deleted.ID, "name", deleted.Name)
	return deleted, nil
}

func duplicatePhaseName(err error, name string, scope models.UsageScope) error {
	if dErrors.HasCode(storeErr(err, ""), dErrors.CodeConflict) {
		return dErrors.Newf(dErrors.CodeConflict,
			"a phase named %q already exists for scope %q", name, scope)
	}
	return storeErr(err, "phase not found")
}

func filterPhases(phases []*models.Phase, keep func(*models.Phase) bool) []*models.Phase {
	out := make([]*models.Phase, 0, len(phases))
	for _, p := range phases {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
