package brdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"known valid", "11144477735", true},
		{"valid with formatting", "111.444.777-35", true},
		{"wrong check digit", "11144477734", false},
		{"wrong first check digit", "11144477745", false},
		{"too short", "1114447773", false},
		{"too long", "111444777350", false},
		{"empty", "", false},
		{"letters only", "abcdefghijk", false},
		{"cnpj length", "11222333000181", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCPF(tt.input))
		})
	}
}

// Repeated-digit CPFs pass the mod-11 arithmetic but are invalid in the
// registry; every one of them must be rejected.
func TestValidateCPFRejectsRepeatedDigits(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		cpf := strings.Repeat(string(d), 11)
		assert.False(t, ValidateCPF(cpf), "expected %s to be rejected", cpf)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "11144477735", Normalize("111.444.777-35"))
	assert.Equal(t, "11222333000181", Normalize("11.222.333/0001-81"))
	assert.Equal(t, "", Normalize("no digits here"))
}

func TestDocumentKind(t *testing.T) {
	assert.Equal(t, KindCPF, DocumentKind("11144477735"))
	assert.Equal(t, KindCNPJ, DocumentKind("11222333000181"))
	assert.Equal(t, KindUnknown, DocumentKind("123"))
	assert.Equal(t, "cpf", KindCPF.String())
	assert.Equal(t, "cnpj", KindCNPJ.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
