package models

import (
	"strings"
	"time"

	dErrors "precato/pkg/domain-errors"
)

// Cliente is a party holding rights to precatórios. Its key is the CPF or
// CNPJ in canonical digit-only form; the caller runs the checksum validation
// before construction.
type Cliente struct {
	CPF        string    `json:"cpf"`
	Nome       string    `json:"nome"`
	Nascimento time.Time `json:"nascimento"`
	Prioridade bool      `json:"prioridade"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewCliente(cpf, nome string, nascimento time.Time, prioridade bool, now time.Time) (*Cliente, error) {
	if strings.TrimSpace(cpf) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "cliente document cannot be empty")
	}
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "cliente name cannot be empty")
	}
	return &Cliente{
		CPF:        cpf,
		Nome:       nome,
		Nascimento: nascimento,
		Prioridade: prioridade,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
