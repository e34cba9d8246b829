// Package brdoc validates Brazilian document identifiers: CPF and CNPJ
// taxpayer numbers (check-digit arithmetic) and CNJ case numbers (structural
// and semantic checks). All functions are pure and never touch I/O.
package brdoc

import "strings"

// Kind tags a normalized document string by its length.
type Kind int

const (
	KindUnknown Kind = iota
	KindCPF
	KindCNPJ
)

func (k Kind) String() string {
	switch k {
	case KindCPF:
		return "cpf"
	case KindCNPJ:
		return "cnpj"
	default:
		return "unknown"
	}
}

const (
	cpfLength  = 11
	cnpjLength = 14
)

// Normalize strips every non-digit character from raw. Callers persist
// documents in this canonical digit-only form.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DocumentKind classifies an already-normalized digit string by length.
func DocumentKind(digits string) Kind {
	switch len(digits) {
	case cpfLength:
		return KindCPF
	case cnpjLength:
		return KindCNPJ
	default:
		return KindUnknown
	}
}

// allSameDigits reports whether s consists of one repeated digit. Such
// strings can pass the mod-11 arithmetic but are rejected by the registry.
func allSameDigits(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
