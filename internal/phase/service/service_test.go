package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"precato/internal/phase/models"
	phasestore "precato/internal/phase/store"
	precatoriomodels "precato/internal/precatorio/models"
	precatoriostore "precato/internal/precatorio/store"
	dErrors "precato/pkg/domain-errors"
)

type PhaseServiceSuite struct {
	suite.Suite
	records *precatoriostore.InMemory
	service *Service
	ctx     context.Context
}

func TestPhaseServiceSuite(t *testing.T) {
	suite.Run(t, new(PhaseServiceSuite))
}

func (s *PhaseServiceSuite) SetupTest() {
	s.records = precatoriostore.NewInMemory()
	s.service = New(phasestore.NewInMemory(), phasestore.NewFeePhaseInMemory(), s.records)
	s.ctx = context.Background()
}

func (s *PhaseServiceSuite) createPhase(name string, scope models.UsageScope) *models.Phase {
	phase, err := s.service.CreatePhase(s.ctx, PhaseInput{Name: name, UsageScope: scope})
	s.Require().NoError(err)
	return phase
}

// seedAlvara plants an alvará referencing the given phase ids so delete
// guards have something to count.
func (s *PhaseServiceSuite) seedAlvara(phaseID, feePhaseID *uuid.UUID) {
	now := time.Now()
	s.Require().NoError(s.records.CreateAlvara(s.ctx, &precatoriomodels.Alvara{
		ID:            uuid.New(),
		PrecatorioCNJ: "1234567-89.2023.8.26.0100",
		ClienteCPF:    "11144477735",
		Tipo:          precatoriomodels.AlvaraPrioridade,
		PhaseID:       phaseID,
		FeePhaseID:    feePhaseID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func (s *PhaseServiceSuite) seedRequerimento(phaseID *uuid.UUID) {
	now := time.Now()
	s.Require().NoError(s.records.CreateRequerimento(s.ctx, &precatoriomodels.Requerimento{
		ID:            uuid.New(),
		PrecatorioCNJ: "1234567-89.2023.8.26.0100",
		ClienteCPF:    "11144477735",
		Pedido:        precatoriomodels.PedidoPrioridadeIdade,
		PhaseID:       phaseID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func (s *PhaseServiceSuite) TestCreatePhase() {
	s.Run("applies defaults", func() {
		phase := s.createPhase("Aguardando Depósito", "")
		s.Equal("#6c757d", phase.Color)
		s.Equal(models.ScopeBoth, phase.UsageScope)
		s.True(phase.Active)
	})

	s.Run("rejects blank name with validation code", func() {
		_, err := s.service.CreatePhase(s.ctx, PhaseInput{Name: "   "})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects malformed color", func() {
		_, err := s.service.CreatePhase(s.ctx, PhaseInput{Name: "Colorida", Color: "red"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *PhaseServiceSuite) TestScopedUniqueness() {
	s.Run("same name may exist once per scope", func() {
		s.createPhase("Finalizado", models.ScopeAlvara)
		s.createPhase("Finalizado", models.ScopeRequerimento)
		s.createPhase("Finalizado", models.ScopeBoth)
	})

	s.Run("duplicate within a scope conflicts", func() {
		s.createPhase("Em Análise", models.ScopeAlvara)
		_, err := s.service.CreatePhase(s.ctx, PhaseInput{Name: "em análise", UsageScope: models.ScopeAlvara})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("update cannot steal a name in the same scope", func() {
		s.createPhase("Primeira", models.ScopeBoth)
		second := s.createPhase("Segunda", models.ScopeBoth)

		_, err := s.service.UpdatePhase(s.ctx, second.ID, PhaseInput{Name: "Primeira", UsageScope: models.ScopeBoth})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *PhaseServiceSuite) TestTogglePhase() {
	phase := s.createPhase("Alternável", models.ScopeBoth)

	result, err := s.service.TogglePhase(s.ctx, phase.ID)
	s.Require().NoError(err)
	s.False(result.Activated)
	s.False(result.Phase.Active)

	// Everything except activation stays put.
	s.Equal(phase.Name, result.Phase.Name)
	s.Equal(phase.Color, result.Phase.Color)
	s.Equal(phase.UsageScope, result.Phase.UsageScope)
	s.Equal(phase.DisplayOrder, result.Phase.DisplayOrder)

	result, err = s.service.TogglePhase(s.ctx, phase.ID)
	s.Require().NoError(err)
	s.True(result.Activated)
}

func (s *PhaseServiceSuite) TestPhaseListings() {
	alvaraOnly := s.createPhase("Só Alvará", models.ScopeAlvara)
	s.createPhase("Só Requerimento", models.ScopeRequerimento)
	both := s.createPhase("Ambos", models.ScopeBoth)

	_, err := s.service.TogglePhase(s.ctx, both.ID)
	s.Require().NoError(err)

	s.Run("PhasesFor includes inactive phases in scope", func() {
		phases, err := s.service.PhasesFor(s.ctx, models.UsageAlvara)
		s.Require().NoError(err)
		s.Require().Len(phases, 2)
	})

	s.Run("AssignablePhasesFor keeps only active phases", func() {
		phases, err := s.service.AssignablePhasesFor(s.ctx, models.UsageAlvara)
		s.Require().NoError(err)
		s.Require().Len(phases, 1)
		s.Equal(alvaraOnly.ID, phases[0].ID)
	})

	s.Run("rejects unknown usage", func() {
		_, err := s.service.PhasesFor(s.ctx, "contrato")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("stats count activation states", func() {
		stats, err := s.service.PhaseStats(s.ctx)
		s.Require().NoError(err)
		s.Equal(3, stats.Total)
		s.Equal(2, stats.Active)
		s.Equal(1, stats.Inactive)
	})
}

func (s *PhaseServiceSuite) TestDeletePhase() {
	s.Run("alvara references block deletion first", func() {
		phase := s.createPhase("Usada Por Ambos", models.ScopeBoth)
		s.seedAlvara(&phase.ID, nil)
		s.seedRequerimento(&phase.ID)

		_, err := s.service.DeletePhase(s.ctx, phase.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInUse))

		details, ok := dErrors.InUseDetails(err)
		s.Require().True(ok)
		s.Equal("alvaras", details.Dependents)
		s.Equal(1, details.Count)
	})

	s.Run("requerimento references block when no alvara uses the phase", func() {
		phase := s.createPhase("Usada Por Requerimento", models.ScopeRequerimento)
		s.seedRequerimento(&phase.ID)

		_, err := s.service.DeletePhase(s.ctx, phase.ID)
		s.Require().Error(err)

		details, ok := dErrors.InUseDetails(err)
		s.Require().True(ok)
		s.Equal("requerimentos", details.Dependents)
	})

	s.Run("unreferenced phase deletes and frees its name", func() {
		phase := s.createPhase("Sem Uso", models.ScopeBoth)

		deleted, err := s.service.DeletePhase(s.ctx, phase.ID)
		s.Require().NoError(err)
		s.Equal(phase.ID, deleted.ID)

		s.createPhase("Sem Uso", models.ScopeBoth)
	})

	s.Run("second delete reports not found", func() {
		phase := s.createPhase("Duplo Delete", models.ScopeBoth)
		_, err := s.service.DeletePhase(s.ctx, phase.ID)
		s.Require().NoError(err)

		_, err = s.service.DeletePhase(s.ctx, phase.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PhaseServiceSuite) TestFeePhases() {
	s.Run("create applies the fee default color", func() {
		phase, err := s.service.CreateFeePhase(s.ctx, FeePhaseInput{Name: "Recebido"})
		s.Require().NoError(err)
		s.Equal("#28a745", phase.Color)
	})

	s.Run("names are globally unique", func() {
		_, err := s.service.CreateFeePhase(s.ctx, FeePhaseInput{Name: "Em Cobrança"})
		s.Require().NoError(err)

		_, err = s.service.CreateFeePhase(s.ctx, FeePhaseInput{Name: "em cobrança"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("alvara fee references block deletion", func() {
		phase, err := s.service.CreateFeePhase(s.ctx, FeePhaseInput{Name: "Bloqueada"})
		s.Require().NoError(err)
		s.seedAlvara(nil, &phase.ID)

		_, err = s.service.DeleteFeePhase(s.ctx, phase.ID)
		s.Require().Error(err)

		details, ok := dErrors.InUseDetails(err)
		s.Require().True(ok)
		s.Equal("alvaras", details.Dependents)
	})

	s.Run("unreferenced fee phase deletes", func() {
		phase, err := s.service.CreateFeePhase(s.ctx, FeePhaseInput{Name: "Livre"})
		s.Require().NoError(err)

		_, err = s.service.DeleteFeePhase(s.ctx, phase.ID)
		s.Require().NoError(err)
	})
}
