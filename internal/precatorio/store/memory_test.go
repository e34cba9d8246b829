package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"precato/internal/precatorio/models"
	"precato/pkg/platform/sentinel"
)

const (
	testCNJ = "1234567-89.2023.8.26.0100"
	testCPF = "11144477735"
)

type RecordStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestRecordStoreSuite(t *testing.T) {
	suite.Run(t, new(RecordStoreSuite))
}

func (s *RecordStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *RecordStoreSuite) seedPrecatorio(cnj string) {
	now := time.Now()
	s.Require().NoError(s.store.CreatePrecatorio(s.ctx, &models.Precatorio{
		CNJ: cnj, Orcamento: 2023, Origem: testCNJ, CreatedAt: now, UpdatedAt: now,
	}))
}

func (s *RecordStoreSuite) seedCliente(cpf string) {
	now := time.Now()
	s.Require().NoError(s.store.CreateCliente(s.ctx, &models.Cliente{
		CPF: cpf, Nome: "Maria da Silva", CreatedAt: now, UpdatedAt: now,
	}))
}

func (s *RecordStoreSuite) seedAlvara(cnj, cpf string, phaseID *uuid.UUID) uuid.UUID {
	now := time.Now()
	id := uuid.New()
	s.Require().NoError(s.store.CreateAlvara(s.ctx, &models.Alvara{
		ID: id, PrecatorioCNJ: cnj, ClienteCPF: cpf,
		Tipo: models.AlvaraAcordo, PhaseID: phaseID, CreatedAt: now, UpdatedAt: now,
	}))
	return id
}

func (s *RecordStoreSuite) TestPrecatorioLifecycle() {
	s.Run("creates and finds by cnj", func() {
		s.seedPrecatorio(testCNJ)

		found, err := s.store.FindPrecatorio(s.ctx, testCNJ)
		s.Require().NoError(err)
		s.Equal(2023, found.Orcamento)
	})

	s.Run("duplicate cnj conflicts", func() {
		err := s.store.CreatePrecatorio(s.ctx, &models.Precatorio{CNJ: testCNJ})
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("delete removes record and its links", func() {
		s.seedCliente(testCPF)
		s.Require().NoError(s.store.Link(s.ctx, testCNJ, testCPF))

		s.Require().NoError(s.store.DeletePrecatorio(s.ctx, testCNJ))

		_, err := s.store.FindPrecatorio(s.ctx, testCNJ)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		count, err := s.store.CountPrecatoriosByCliente(s.ctx, testCPF)
		s.Require().NoError(err)
		s.Zero(count)
	})
}

func (s *RecordStoreSuite) TestLinks() {
	s.seedPrecatorio(testCNJ)
	s.seedCliente(testCPF)

	s.Run("link then check", func() {
		s.Require().NoError(s.store.Link(s.ctx, testCNJ, testCPF))

		linked, err := s.store.IsLinked(s.ctx, testCNJ, testCPF)
		s.Require().NoError(err)
		s.True(linked)

		count, err := s.store.CountClientesByPrecatorio(s.ctx, testCNJ)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("double link conflicts", func() {
		s.Require().ErrorIs(s.store.Link(s.ctx, testCNJ, testCPF), sentinel.ErrConflict)
	})

	s.Run("unlink then absent", func() {
		s.Require().NoError(s.store.Unlink(s.ctx, testCNJ, testCPF))
		s.Require().ErrorIs(s.store.Unlink(s.ctx, testCNJ, testCPF), sentinel.ErrNotFound)

		linked, err := s.store.IsLinked(s.ctx, testCNJ, testCPF)
		s.Require().NoError(err)
		s.False(linked)
	})
}

func (s *RecordStoreSuite) TestDependentCounts() {
	s.seedPrecatorio(testCNJ)
	s.seedCliente(testCPF)

	phaseID := uuid.New()
	s.seedAlvara(testCNJ, testCPF, &phaseID)
	s.seedAlvara(testCNJ, testCPF, nil)

	now := time.Now()
	s.Require().NoError(s.store.CreateRequerimento(s.ctx, &models.Requerimento{
		ID: uuid.New(), PrecatorioCNJ: testCNJ, ClienteCPF: testCPF,
		Pedido: models.PedidoAcordoPrincipal, PhaseID: &phaseID, CreatedAt: now, UpdatedAt: now,
	}))

	byPhase, err := s.store.CountAlvarasByPhase(s.ctx, phaseID)
	s.Require().NoError(err)
	s.Equal(1, byPhase)

	byPrecatorio, err := s.store.CountAlvarasByPrecatorio(s.ctx, testCNJ)
	s.Require().NoError(err)
	s.Equal(2, byPrecatorio)

	byLink, err := s.store.CountAlvarasByLink(s.ctx, testCNJ, testCPF)
	s.Require().NoError(err)
	s.Equal(2, byLink)

	reqsByPhase, err := s.store.CountRequerimentosByPhase(s.ctx, phaseID)
	s.Require().NoError(err)
	s.Equal(1, reqsByPhase)

	reqsByCliente, err := s.store.CountRequerimentosByCliente(s.ctx, testCPF)
	s.Require().NoError(err)
	s.Equal(1, reqsByCliente)
}

func (s *RecordStoreSuite) TestTotals() {
	s.seedPrecatorio(testCNJ)
	s.seedCliente(testCPF)
	s.seedAlvara(testCNJ, testCPF, nil)

	precatorios, err := s.store.CountPrecatorios(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, precatorios)

	clientes, err := s.store.CountClientes(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, clientes)

	alvaras, err := s.store.CountAlvaras(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, alvaras)

	requerimentos, err := s.store.CountRequerimentos(s.ctx)
	s.Require().NoError(err)
	s.Zero(requerimentos)
}

func (s *RecordStoreSuite) TestAlvaraLifecycle() {
	s.seedPrecatorio(testCNJ)
	s.seedCliente(testCPF)
	id := s.seedAlvara(testCNJ, testCPF, nil)

	found, err := s.store.FindAlvara(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.AlvaraAcordo, found.Tipo)

	s.Require().NoError(s.store.DeleteAlvara(s.ctx, id))
	s.Require().ErrorIs(s.store.DeleteAlvara(s.ctx, id), sentinel.ErrNotFound)
}
