package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"precato/internal/phase/models"
	"precato/pkg/platform/sentinel"
)

// InMemory holds phases behind a mutex. The uniqueness check and the insert
// run under one lock acquisition, mirroring the transactional guarantee of
// the postgres store.
type InMemory struct {
	mu     sync.RWMutex
	phases map[uuid.UUID]*models.Phase
}

func NewInMemory() *InMemory {
	return &InMemory{phases: make(map[uuid.UUID]*models.Phase)}
}

func (s *InMemory) CreateIfNameAvailable(_ context.Context, phase *models.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(phase.Name, phase.UsageScope, phase.ID) {
		return sentinel.ErrConflict
	}
	s.phases[phase.ID] = clonePhase(phase)
	return nil
}

func (s *InMemory) UpdateIfNameAvailable(_ context.Context, phase *models.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.phases[phase.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.nameTaken(phase.Name, phase.UsageScope, phase.ID) {
		return sentinel.ErrConflict
	}
	s.phases[phase.ID] = clonePhase(phase)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phase, ok := s.phases[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clonePhase(phase), nil
}

// List returns every phase, active or not, in display order.
func (s *InMemory) List(_ context.Context) ([]*models.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phases := make([]*models.Phase, 0, len(s.phases))
	for _, p := range s.phases {
		phases = append(phases, clonePhase(p))
	}
	models.SortPhases(phases)
	return phases, nil
}

// Execute atomically validates and mutates a phase under the store lock.
func (s *InMemory) Execute(_ context.Context, id uuid.UUID, validate func(*models.Phase) error, mutate func(*models.Phase)) (*models.Phase, error) {
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
	return clonePhase(phase), nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.phases[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.phases, id)
	return nil
}

// nameTaken must be called with the lock held.
func (s *InMemory) nameTaken(name string, scope models.UsageScope, exclude uuid.UUID) bool {
	lower := strings.ToLower(name)
	for _, p := range s.phases {
		if p.ID == exclude {
			continue
		}
		if p.UsageScope == scope && strings.ToLower(p.Name) == lower {
			return true
		}
	}
	return false
}

func clonePhase(p *models.Phase) *models.Phase {
	c := *p
	return &c
}
