package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"precato/internal/phase/models"
	"precato/pkg/platform/sentinel"
)

type PhaseStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *PhaseStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

// Subtests get a fresh store so fixtures never leak between them.
func (s *PhaseStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func TestPhaseStoreSuite(t *testing.T) {
	suite.Run(t, new(PhaseStoreSuite))
}

func (s *PhaseStoreSuite) newPhase(name string, scope models.UsageScope) *models.Phase {
	phase, err := models.NewPhase(uuid.New(), name, "", "", scope, 0, time.Now())
	s.Require().NoError(err)
	return phase
}

func (s *PhaseStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds phase by ID", func() {
		phase := s.newPhase("Aguardando Depósito", models.ScopeAlvara)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, phase))

		found, err := s.store.FindByID(s.ctx, phase.ID)
		s.Require().NoError(err)
		s.Equal(phase.Name, found.Name)
		s.Equal(models.ScopeAlvara, found.UsageScope)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("clones on read", func() {
		phase := s.newPhase("Clonagem", models.ScopeBoth)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, phase))

		found, err := s.store.FindByID(s.ctx, phase.ID)
		s.Require().NoError(err)
		found.Name = "Mutated"

		again, err := s.store.FindByID(s.ctx, phase.ID)
		s.Require().NoError(err)
		s.Equal("Clonagem", again.Name)
	})
}

func (s *PhaseStoreSuite) TestScopedNameUniqueness() {
	s.Run("rejects duplicate name in the same scope", func() {
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newPhase("Finalizado", models.ScopeAlvara)))

		err := s.store.CreateIfNameAvailable(s.ctx, s.newPhase("Finalizado", models.ScopeAlvara))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("enforces case-insensitive uniqueness", func() {
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newPhase("Deferido", models.ScopeRequerimento)))

		err := s.store.CreateIfNameAvailable(s.ctx, s.newPhase("DEFERIDO", models.ScopeRequerimento))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("allows the same name in another scope", func() {
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newPhase("Finalizado", models.ScopeAlvara)))
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newPhase("Finalizado", models.ScopeRequerimento)))
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newPhase("Finalizado", models.ScopeBoth)))
	})

	s.Run("update excludes the phase being edited", func() {
		phase := s.newPhase("Em Análise", models.ScopeBoth)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, phase))

		phase.Description = "aguardando parecer"
		s.Require().NoError(s.store.UpdateIfNameAvailable(s.ctx, phase))
	})

	s.Run("update rejects stealing another phase's name", func() {
		first := s.newPhase("Primeira", models.ScopeBoth)
		second := s.newPhase("Segunda", models.ScopeBoth)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, first))
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, second))

		second.Name = "primeira"
		s.Require().ErrorIs(s.store.UpdateIfNameAvailable(s.ctx, second), sentinel.ErrConflict)
	})
}

func (s *PhaseStoreSuite) TestList() {
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newPhase("Bravo", models.ScopeBoth)))
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newPhase("alfa", models.ScopeBoth)))

	phases, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(phases, 2)
	s.Equal("alfa", phases[0].Name)
	s.Equal("Bravo", phases[1].Name)
}

func (s *PhaseStoreSuite) TestExecute() {
	s.Run("applies mutation atomically", func() {
		phase := s.newPhase("Toggle Alvo", models.ScopeBoth)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, phase))

		updated, err := s.store.Execute(s.ctx, phase.ID, nil, func(p *models.Phase) {
			p.Active = false
		})
		s.Require().NoError(err)
		s.False(updated.Active)

		found, err := s.store.FindByID(s.ctx, phase.ID)
		s.Require().NoError(err)
		s.False(found.Active)
	})

	s.Run("validation failure leaves the phase untouched", func() {
		phase := s.newPhase("Protegido", models.ScopeBoth)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, phase))

		wantErr := sentinel.ErrConflict
		_, err := s.store.Execute(s.ctx, phase.ID,
			func(*models.Phase) error { return wantErr },
			func(p *models.Phase) { p.Active = false })
		s.Require().ErrorIs(err, wantErr)

		found, err := s.store.FindByID(s.ctx, phase.ID)
		s.Require().NoError(err)
		s.True(found.Active)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.Execute(s.ctx, uuid.New(), nil, func(*models.Phase) {})
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PhaseStoreSuite) TestDelete() {
	s.Run("deletes and frees the name", func() {
		phase := s.newPhase("Descartável", models.ScopeBoth)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, phase))
		s.Require().NoError(s.store.Delete(s.ctx, phase.ID))

		_, err := s.store.FindByID(s.ctx, phase.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newPhase("Descartável", models.ScopeBoth)))
	})

	s.Run("second delete reports ErrNotFound", func() {
		phase := s.newPhase("Uma Vez", models.ScopeBoth)
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, phase))
		s.Require().NoError(s.store.Delete(s.ctx, phase.ID))
		s.Require().ErrorIs(s.store.Delete(s.ctx, phase.ID), sentinel.ErrNotFound)
	})
}

type FeePhaseStoreSuite struct {
	suite.Suite
	store *FeePhaseInMemory
	ctx   context.Context
}

func (s *FeePhaseStoreSuite) SetupTest() {
	s.store = NewFeePhaseInMemory()
	s.ctx = context.Background()
}

func TestFeePhaseStoreSuite(t *testing.T) {
	suite.Run(t, new(FeePhaseStoreSuite))
}

func (s *FeePhaseStoreSuite) newFeePhase(name string) *models.FeePhase {
	phase, err := models.NewFeePhase(uuid.New(), name, "", "", 0, time.Now())
	s.Require().NoError(err)
	return phase
}

func (s *FeePhaseStoreSuite) TestNameUniquenessIsGlobal() {
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newFeePhase("Recebido")))

	err := s.store.CreateIfNameAvailable(s.ctx, s.newFeePhase("recebido"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *FeePhaseStoreSuite) TestLifecycle() {
	phase := s.newFeePhase("Em Cobrança")
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, phase))

	updated, err := s.store.Execute(s.ctx, phase.ID, nil, func(p *models.FeePhase) {
		p.Active = false
	})
	s.Require().NoError(err)
	s.False(updated.Active)

	s.Require().NoError(s.store.Delete(s.ctx, phase.ID))
	_, err = s.store.FindByID(s.ctx, phase.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
