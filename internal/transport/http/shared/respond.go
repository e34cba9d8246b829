// Package shared holds the JSON response helpers used by every handler, so
// status mapping and error envelopes stay consistent across the API.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "precato/pkg/domain-errors"
)

// errorBody is the wire envelope for failures.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Dependents string `json:"dependents,omitempty"`
	Count      int    `json:"count,omitempty"`
}

// WriteJSON writes v with the given status. Encoding failures are swallowed;
// the status line has already gone out.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error code to an HTTP status and writes the error
// envelope. In-use rejections carry the blocking dependents and their count.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	detail := errorDetail{Code: string(code), Message: err.Error()}
	if inUse, ok := dErrors.InUseDetails(err); ok {
		detail.Dependents = inUse.Dependents
		detail.Count = inUse.Count
	}
	WriteJSON(w, statusOf(code), errorBody{Error: detail})
}

func statusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeInUse:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
