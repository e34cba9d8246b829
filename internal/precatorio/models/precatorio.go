package models

import (
	"strings"
	"time"

	dErrors "precato/pkg/domain-errors"
)

// Precatorio is a court-ordered payment record. Its natural key is the CNJ
// case number, validated by the caller before construction; the model never
// reformats it.
//
// Invariants:
//   - CNJ and Origem are non-empty, caller-validated CNJ numbers
//   - Orcamento (budget year) is within [1988, 2050]
//   - ValorDeFace is non-negative; blank means 0
type Precatorio struct {
	CNJ         string    `json:"cnj"`
	Orcamento   int       `json:"orcamento"`
	Origem      string    `json:"origem"`
	ValorDeFace float64   `json:"valor_de_face"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewPrecatorio(cnj string, orcamento int, origem string, valorDeFace float64, now time.Time) (*Precatorio, error) {
	if strings.TrimSpace(cnj) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "precatorio cnj cannot be empty")
	}
	if strings.TrimSpace(origem) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "precatorio origem cannot be empty")
	}
	if orcamento < 1988 || orcamento > 2050 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "orcamento year must be between 1988 and 2050")
	}
	if valorDeFace < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "valor de face cannot be negative")
	}
	return &Precatorio{
		CNJ:         cnj,
		Orcamento:   orcamento,
		Origem:      origem,
		ValorDeFace: valorDeFace,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
