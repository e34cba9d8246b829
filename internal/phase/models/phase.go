package models

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "precato/pkg/domain-errors"
)

// DefaultPhaseColor is applied when a phase is created without a color.
const DefaultPhaseColor = "#6c757d"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Phase is a named workflow stage for alvarás and requerimentos.
//
// Invariants:
//   - Name is non-empty after trimming
//   - Name is unique (case-insensitive) within the same UsageScope; the same
//     name may exist once per scope
//   - Color matches #RRGGBB
//   - DisplayOrder is non-negative
//   - Toggling Active mutates only Active and UpdatedAt
type Phase struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Color        string     `json:"color"`
	UsageScope   UsageScope `json:"usage_scope"`
	DisplayOrder int        `json:"display_order"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewPhase builds an active phase, applying defaults for color and scope.
func NewPhase(id uuid.UUID, name, description, color string, scope UsageScope, displayOrder int, now time.Time) (*Phase, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "phase name cannot be empty")
	}
	if len(name) > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "phase name must be 100 characters or less")
	}
	if color == "" {
		color = DefaultPhaseColor
	}
	if err := ValidateColor(color); err != nil {
		return nil, err
	}
	if scope == "" {
		scope = ScopeBoth
	}
	if !scope.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "usage scope must be alvara, requerimento or both")
	}
	if displayOrder < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "display order cannot be negative")
	}
	return &Phase{
		ID:           id,
		Name:         name,
		Description:  description,
		Color:        color,
		UsageScope:   scope,
		DisplayOrder: displayOrder,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateColor checks the #RRGGBB hex form used for phase badges.
func ValidateColor(color string) error {
	if !hexColorPattern.MatchString(color) {
		return dErrors.New(dErrors.CodeValidation, "color must be a hex value in the form #RRGGBB")
	}
	return nil
}

// ApplyToggle flips the activation flag in place and returns the new state.
// Uniqueness and color are immutable on toggle, so no validation runs here.
func (p *Phase) ApplyToggle(now time.Time) bool {
	p.Active = !p.Active
	p.UpdatedAt = now
	return p.Active
}

// SortPhases orders phases by display order, then usage scope, then name.
// The listing contract; stores return phases in this order.
func SortPhases(phases []*Phase) {
	sort.SliceStable(phases, func(i, j int) bool {
		if phases[i].DisplayOrder != phases[j].DisplayOrder {
			return phases[i].DisplayOrder < phases[j].DisplayOrder
		}
		if phases[i].UsageScope != phases[j].UsageScope {
			return phases[i].UsageScope < phases[j].UsageScope
		}
		return strings.ToLower(phases[i].Name) < strings.ToLower(phases[j].Name)
	})
}

// PhaseStats aggregates activation counters derivable from a single listing.
type PhaseStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// StatsOf derives activation counters from one fetched snapshot, so list
// views need a single store round trip.
func StatsOf(phases []*Phase) PhaseStats {
	stats := PhaseStats{Total: len(phases)}
	for _, p := range phases {
		if p.Active {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats
}
