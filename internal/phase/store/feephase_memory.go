package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"precato/internal/phase/models"
	"precato/pkg/platform/sentinel"
)

// FeePhaseInMemory holds contractual-fee phases behind a mutex. Names are
// unique globally, so the availability check has no scope dimension.
type FeePhaseInMemory struct {
	mu     sync.RWMutex
	phases map[uuid.UUID]*models.FeePhase
}

func NewFeePhaseInMemory() *FeePhaseInMemory {
	return &FeePhaseInMemory{phases: make(map[uuid.UUID]*models.FeePhase)}
}

func (s *FeePhaseInMemory) CreateIfNameAvailable(_ context.Context, phase *models.FeePhase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(phase.Name, phase.ID) {
		return sentinel.ErrConflict
	}
	s.phases[phase.ID] = cloneFeePhase(phase)
	return nil
}

func (s *FeePhaseInMemory) UpdateIfNameAvailable(_ context.Context, phase *models.FeePhase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.phases[phase.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.nameTaken(phase.Name, phase.ID) {
		return sentinel.ErrConflict
	}
	s.phases[phase.ID] = cloneFeePhase(phase)
	return nil
}

func (s *FeePhaseInMemory) FindByID(_ context.Context, id uuid.UUID) (*models.FeePhase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phase, ok := s.phases[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneFeePhase(phase), nil
}

func (s *FeePhaseInMemory) List(_ context.Context) ([]*models.FeePhase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phases := make([]*models.FeePhase, 0, len(s.phases))
	for _, p := range s.phases {
		phases = append(phases, cloneFeePhase(p))
	}
	models.SortFeePhases(phases)
	return phases, nil
}

func (s *FeePhaseInMemory) Execute(_ context.Context, id uuid.UUID, validate func(*models.FeePhase) error, mutate func(*models.FeePhase)) (*models.FeePhase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	phase, ok := s.phases[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(phase); err != nil {
			return nil, err
		}
	}
	mutate(phase)
	return cloneFeePhase(phase), nil
}

func (s *FeePhaseInMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.phases[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.phases, id)
	return nil
}

func (s *FeePhaseInMemory) nameTaken(name string, exclude uuid.UUID) bool {
	lower := strings.ToLower(name)
	for _, p := range s.phases {
		if p.ID == exclude {
			continue
		}
		if strings.ToLower(p.Name) == lower {
			return true
		}
	}
	return false
}

func cloneFeePhase(p *models.FeePhase) *models.FeePhase {
	c := *p
	return &c
}
