package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "precato/pkg/domain-errors"
)

// AlvaraTipo categorizes how the payment authorization was obtained.
type AlvaraTipo string

const (
	AlvaraOrdemCronologica AlvaraTipo = "ordem cronológica"
	AlvaraPrioridade       AlvaraTipo = "prioridade"
	AlvaraAcordo           AlvaraTipo = "acordo"
)

func (t AlvaraTipo) IsValid() bool {
	switch t {
	case AlvaraOrdemCronologica, AlvaraPrioridade, AlvaraAcordo:
		return true
	}
	return false
}

// Alvara authorizes payment of specific amounts from a precatório to a
// cliente. The main phase and the contractual-fee phase are tracked
// independently; either may be unset.
//
// Invariants:
//   - The cliente must be linked to the precatório (service-enforced)
//   - Monetary amounts are non-negative; blank fee fields default to 0
type Alvara struct {
	ID                      uuid.UUID  `json:"id"`
	PrecatorioCNJ           string     `json:"precatorio_cnj"`
	ClienteCPF              string     `json:"cliente_cpf"`
	Tipo                    AlvaraTipo `json:"tipo"`
	ValorPrincipal          float64    `json:"valor_principal"`
	HonorariosContratuais   float64    `json:"honorarios_contratuais"`
	HonorariosSucumbenciais float64    `json:"honorarios_sucumbenciais"`
	PhaseID                 *uuid.UUID `json:"phase_id,omitempty"`
	FeePhaseID              *uuid.UUID `json:"fee_phase_id,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

func NewAlvara(id uuid.UUID, precatorioCNJ, clienteCPF string, tipo AlvaraTipo, valorPrincipal, honorariosContratuais, honorariosSucumbenciais float64, now time.Time) (*Alvara, error) {
	if strings.TrimSpace(precatorioCNJ) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "alvara precatorio cnj cannot be empty")
	}
	if strings.TrimSpace(clienteCPF) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "alvara cliente document cannot be empty")
	}
	if !tipo.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "alvara tipo must be ordem cronológica, prioridade or acordo")
	}
	if valorPrincipal < 0 || honorariosContratuais < 0 || honorariosSucumbenciais < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "alvara amounts cannot be negative")
	}
	return &Alvara{
		ID:                      id,
		PrecatorioCNJ:           precatorioCNJ,
		ClienteCPF:              clienteCPF,
		Tipo:                    tipo,
		ValorPrincipal:          valorPrincipal,
		HonorariosContratuais:   honorariosContratuais,
		HonorariosSucumbenciais: honorariosSucumbenciais,
		CreatedAt:               now,
		UpdatedAt:               now,
	}, nil
}
