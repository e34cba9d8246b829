package brdoc

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CNJ validation failures. Callers distinguish a malformed shape from a
// semantically invalid year or judicial segment.
var (
	ErrInvalidFormat  = errors.New("cnj must match NNNNNNN-DD.AAAA.J.TR.OOOO")
	ErrInvalidYear    = errors.New("cnj year must be between 1988 and 2050")
	ErrInvalidSegment = errors.New("cnj judicial segment must be a digit from 1 to 9")
)

// cnjPattern: 7-digit sequential, 2 check digits, 4-digit year, 1-digit
// judicial segment, 2-digit court, 4-digit origin unit.
var cnjPattern = regexp.MustCompile(`^\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}$`)

const (
	cnjMinYear = 1988 // promulgation of the current constitution
	cnjMaxYear = 2050
)

// ValidateCNJ checks a CNJ case number like "1234567-89.2023.8.26.0100".
// Spaces are stripped; dots and dashes are part of the required shape and are
// kept. On success the cleaned string is returned unchanged, so the caller
// can use it as a natural key without reformatting.
func ValidateCNJ(raw string) (string, error) {
	cnj := strings.ReplaceAll(raw, " ", "")

	if !cnjPattern.MatchString(cnj) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}

	// NNNNNNN-DD.AAAA.J.TR.OOOO: fields after the first dot are year,
	// segment, court, origin.
	rest := strings.Split(cnj[strings.IndexByte(cnj, '.')+1:], ".")

	year, err := strconv.Atoi(rest[0])
	if err != nil || year < cnjMinYear || year > cnjMaxYear {
		return "", fmt.Errorf("%w: got %s", ErrInvalidYear, rest[0])
	}

	segment, err := strconv.Atoi(rest[1])
	if err != nil || segment < 1 || segment > 9 {
		return "", fmt.Errorf("%w: got %s", ErrInvalidSegment, rest[1])
	}

	return cnj, nil
}
