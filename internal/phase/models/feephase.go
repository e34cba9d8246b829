package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "precato/pkg/domain-errors"
)

// DefaultFeePhaseColor is green to distinguish fee phases from main phases.
const DefaultFeePhaseColor = "#28a745"

// FeePhase is the simpler sibling of Phase used exclusively to track the
// contractual-fee sub-status of an alvará. Names are unique globally
// (case-insensitive); there is no usage scope.
type FeePhase struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Color        string    `json:"color"`
	DisplayOrder int       `json:"display_order"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewFeePhase builds an active contractual-fee phase.
func NewFeePhase(id uuid.UUID, name, description, color string, displayOrder int, now time.Time) (*FeePhase, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "fee phase name cannot be empty")
	}
	if len(name) > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "fee phase name must be 100 characters or less")
	}
	if color == "" {
		color = DefaultFeePhaseColor
	}
	if err := ValidateColor(color); err != nil {
		return nil, err
	}
	if displayOrder < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "display order cannot be negative")
	}
	return &FeePhase{
		ID:           id,
		Name:         name,
		Description:  description,
		Color:        color,
		DisplayOrder: displayOrder,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ApplyToggle flips the activation flag in place and returns the new state.
func (p *FeePhase) ApplyToggle(now time.Time) bool {
	p.Active = !p.Active
	p.UpdatedAt = now
	return p.Active
}

// SortFeePhases orders fee phases by display order, then name.
func SortFeePhases(phases []*FeePhase) {
	sort.SliceStable(phases, func(i, j int) bool {
		if phases[i].DisplayOrder != phases[j].DisplayOrder {
			return phases[i].DisplayOrder < phases[j].DisplayOrder
		}
		return strings.ToLower(phases[i].Name) < strings.ToLower(phases[j].Name)
	})
}
