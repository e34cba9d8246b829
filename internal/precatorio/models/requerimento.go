package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "precato/pkg/domain-errors"
)

// Pedido is the single request type a requerimento is filed for.
type Pedido string

const (
	PedidoPrioridadeDoenca  Pedido = "prioridade doença"
	PedidoPrioridadeIdade   Pedido = "prioridade idade"
	PedidoAcordoPrincipal   Pedido = "acordo principal"
	PedidoAcordoContratuais Pedido = "acordo honorários contratuais"
	PedidoAcordoSucumbencia Pedido = "acordo honorários sucumbenciais"
)

func (p Pedido) IsValid() bool {
	switch p {
	case PedidoPrioridadeDoenca, PedidoPrioridadeIdade, PedidoAcordoPrincipal,
		PedidoAcordoContratuais, PedidoAcordoSucumbencia:
		return true
	}
	return false
}

// IsPrioridade reports whether the pedido requests expedited processing.
func (p Pedido) IsPrioridade() bool {
	return p == PedidoPrioridadeDoenca || p == PedidoPrioridadeIdade
}

// Requerimento is a formal request filed against a precatório on behalf of a
// linked cliente.
type Requerimento struct {
	ID            uuid.UUID  `json:"id"`
	PrecatorioCNJ string     `json:"precatorio_cnj"`
	ClienteCPF    string     `json:"cliente_cpf"`
	Valor         float64    `json:"valor"`
	Desagio       float64    `json:"desagio"`
	Pedido        Pedido     `json:"pedido"`
	PhaseID       *uuid.UUID `json:"phase_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewRequerimento(id uuid.UUID, precatorioCNJ, clienteCPF string, valor, desagio float64, pedido Pedido, now time.Time) (*Requerimento, error) {
	if strings.TrimSpace(precatorioCNJ) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "requerimento precatorio cnj cannot be empty")
	}
	if strings.TrimSpace(clienteCPF) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "requerimento cliente document cannot be empty")
	}
	if valor < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "requerimento valor cannot be negative")
	}
	if desagio < 0 || desagio > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "desagio must be between 0 and 100")
	}
	if !pedido.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown pedido type")
	}
	return &Requerimento{
		ID:            id,
		PrecatorioCNJ: precatorioCNJ,
		ClienteCPF:    clienteCPF,
		Valor:         valor,
		Desagio:       desagio,
		Pedido:        pedido,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// HasPhase reports whether a phase is assigned. The original system treats
// this as a proxy for "deferido" (granted); kept provisional pending an
// explicit status field.
func (r *Requerimento) HasPhase() bool {
	return r.PhaseID != nil
}
