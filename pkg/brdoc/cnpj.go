package brdoc

// RFB weight vectors for the two CNPJ verifying digits.
var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidateCNPJ reports whether raw is a valid CNPJ. Formatting characters are
// stripped before checking. Returns false for any malformed input; never panics.
func ValidateCNPJ(raw string) bool {
	cnpj := Normalize(raw)
	if len(cnpj) != cnpjLength {
		return false
	}
	// Reject known invalid patterns that trick the math algorithm.
	if allSameDigits(cnpj) {
		return false
	}

	first := cnpjCheckDigit(cnpj[:12], cnpjWeights1)
	if first != int(cnpj[12]-'0') {
		return false
	}
	second := cnpjCheckDigit(cnpj[:13], cnpjWeights2)
	return second == int(cnpj[13]-'0')
}

func cnpjCheckDigit(base string, weights []int) int {
	sum := 0
	for i, weight := range weights {
		sum += int(base[i]-'0') * weight
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
