package brdoc

// ValidateCPF reports whether raw is a valid CPF. Formatting characters are
// stripped before checking, so "111.444.777-35" and "11144477735" are
// equivalent. Returns false for any malformed input; never panics.
func ValidateCPF(raw string) bool {
	cpf := Normalize(raw)
	if len(cpf) != cpfLength {
		return false
	}
	if allSameDigits(cpf) {
		return false
	}

	first := cpfCheckDigit(cpf[:9], 10)
	if first != int(cpf[9]-'0') {
		return false
	}
	second := cpfCheckDigit(cpf[:10], 11)
	return second == int(cpf[10]-'0')
}

// cpfCheckDigit computes a CPF verifying digit over base using descending
// weights starting at firstWeight.
func cpfCheckDigit(base string, firstWeight int) int {
	sum := 0
	for i := 0; i < len(base); i++ {
		sum += int(base[i]-'0') * (firstWeight - i)
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
