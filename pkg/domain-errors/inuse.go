package domainerrors

import (
	"errors"
	"fmt"
)

// InUseError carries the first dependent category that blocked a deletion.
// Guards check categories in a fixed priority order and report only the
// first non-empty one, so Dependents is always a single category.
type InUseError struct {
	// Dependents names the blocking category, e.g. "alvaras", "clientes".
	Dependents string
	// Count is how many dependent records were found in that category.
	Count int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("referenced by %d %s", e.Count, e.Dependents)
}

// NewInUse builds a CodeInUse domain error describing a blocked deletion of
// the named entity.
func NewInUse(entity, dependents string, count int) *Error {
	return &Error{
		Code:    CodeInUse,
		Message: fmt.Sprintf("cannot delete %s: referenced by %d %s", entity, count, dependents),
		Err:     &InUseError{Dependents: dependents, Count: count},
	}
}

// InUseDetails extracts the structured in-use details from err, if present.
func InUseDetails(err error) (*InUseError, bool) {
	var iu *InUseError
	if errors.As(err, &iu) {
		return iu, true
	}
	return nil, false
}
