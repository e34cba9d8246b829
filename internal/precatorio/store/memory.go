package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"precato/internal/precatorio/models"
	"precato/pkg/platform/sentinel"
)

// InMemory is the relational store for the precatório aggregate family:
// precatórios, clientes, their many-to-many links, alvarás and
// requerimentos. One mutex guards the whole family so count-then-delete
// sequences observe a consistent snapshot.
type InMemory struct {
	mu            sync.RWMutex
	precatorios   map[string]*models.Precatorio
	clientes      map[string]*models.Cliente
	links         map[string]map[string]bool // cnj -> set of cpf
	alvaras       map[uuid.UUID]*models.Alvara
	requerimentos map[uuid.UUID]*models.Requerimento
}

func NewInMemory() *InMemory {
	return &InMemory{
		precatorios:   make(map[string]*models.Precatorio),
		clientes:      make(map[string]*models.Cliente),
		links:         make(map[string]map[string]bool),
		alvaras:       make(map[uuid.UUID]*models.Alvara),
		requerimentos: make(map[uuid.UUID]*models.Requerimento),
	}
}

// ---------------------------------------------------------------------------
// Precatorio
// ---------------------------------------------------------------------------

func (s *InMemory) CreatePrecatorio(_ context.Context, p *models.Precatorio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.precatorios[p.CNJ]; ok {
		return sentinel.ErrConflict
	}
	c := *p
	s.precatorios[p.CNJ] = &c
	return nil
}

func (s *InMemory) FindPrecatorio(_ context.Context, cnj string) (*models.Precatorio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.precatorios[cnj]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *InMemory) DeletePrecatorio(_ context.Context, cnj string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.precatorios[cnj]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.precatorios, cnj)
	delete(s.links, cnj)
	return nil
}

// ---------------------------------------------------------------------------
// Cliente
// ---------------------------------------------------------------------------

func (s *InMemory) CreateCliente(_ context.Context, c *models.Cliente) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clientes[c.CPF]; ok {
		return sentinel.ErrConflict
	}
	cp := *c
	s.clientes[c.CPF] = &cp
	return nil
}

func (s *InMemory) FindCliente(_ context.Context, cpf string) (*models.Cliente, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clientes[cpf]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemory) DeleteCliente(_ context.Context, cpf string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clientes[cpf]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.clientes, cpf)
	for _, set := range s.links {
		delete(set, cpf)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Precatorio <-> Cliente links
// ---------------------------------------------------------------------------

func (s *InMemory) Link(_ context.Context, cnj, cpf string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.links[cnj] == nil {
		s.links[cnj] = make(map[string]bool)
	}
	if s.links[cnj][cpf] {
		return sentinel.ErrConflict
	}
	s.links[cnj][cpf] = true
	return nil
}

func (s *InMemory) Unlink(_ context.Context, cnj, cpf string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.links[cnj][cpf] {
		return sentinel.ErrNotFound
	}
	delete(s.links[cnj], cpf)
	return nil
}

func (s *InMemory) IsLinked(_ context.Context, cnj, cpf string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.links[cnj][cpf], nil
}

func (s *InMemory) CountClientesByPrecatorio(_ context.Context, cnj string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links[cnj]), nil
}

func (s *InMemory) CountPrecatoriosByCliente(_ context.Context, cpf string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, set := range s.links {
		if set[cpf] {
			count++
		}
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Alvara
// ---------------------------------------------------------------------------

func (s *InMemory) CreateAlvara(_ context.Context, a *models.Alvara) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *a
	s.alvaras[a.ID] = &c
	return nil
}

func (s *InMemory) FindAlvara(_ context.Context, id uuid.UUID) (*models.Alvara, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alvaras[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (s *InMemory) DeleteAlvara(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alvaras[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.alvaras, id)
	return nil
}

func (s *InMemory) CountAlvarasByPhase(_ context.Context, phaseID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.alvaras {
		if a.PhaseID != nil && *a.PhaseID == phaseID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountAlvarasByFeePhase(_ context.Context, feePhaseID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.alvaras {
		if a.FeePhaseID != nil && *a.FeePhaseID == feePhaseID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountAlvarasByPrecatorio(_ context.Context, cnj string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.alvaras {
		if a.PrecatorioCNJ == cnj {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountAlvarasByCliente(_ context.Context, cpf string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.alvaras {
		if a.ClienteCPF == cpf {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountAlvarasByLink(_ context.Context, cnj, cpf string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.alvaras {
		if a.PrecatorioCNJ == cnj && a.ClienteCPF == cpf {
			count++
		}
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Requerimento
// ---------------------------------------------------------------------------

func (s *InMemory) CreateRequerimento(_ context.Context, r *models.Requerimento) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	s.requerimentos[r.ID] = &c
	return nil
}

func (s *InMemory) FindRequerimento(_ context.Context, id uuid.UUID) (*models.Requerimento, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requerimentos[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (s *InMemory) DeleteRequerimento(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requerimentos[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.requerimentos, id)
	return nil
}

func (s *InMemory) ListRequerimentos(_ context.Context) ([]*models.Requerimento, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Requerimento, 0, len(s.requerimentos))
	for _, r := range s.requerimentos {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (s *InMemory) CountRequerimentosByPhase(_ context.Context, phaseID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.requerimentos {
		if r.PhaseID != nil && *r.PhaseID == phaseID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountRequerimentosByPrecatorio(_ context.Context, cnj string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.requerimentos {
		if r.PrecatorioCNJ == cnj {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountRequerimentosByCliente(_ context.Context, cpf string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.requerimentos {
		if r.ClienteCPF == cpf {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountRequerimentosByLink(_ context.Context, cnj, cpf string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.requerimentos {
		if r.PrecatorioCNJ == cnj && r.ClienteCPF == cpf {
			count++
		}
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Dashboard totals
// ---------------------------------------------------------------------------

func (s *InMemory) CountPrecatorios(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.precatorios), nil
}

func (s *InMemory) CountClientes(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clientes), nil
}

func (s *InMemory) CountAlvaras(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alvaras), nil
}

func (s *InMemory) CountRequerimentos(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requerimentos), nil
}
