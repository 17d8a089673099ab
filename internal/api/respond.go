package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
)

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Kind   string `json:"kind"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// errorKind names the sentinel a validation error belongs to, for responses
// and metric labels.
func errorKind(err error) string {
	switch {
	case errors.Is(err, loan.ErrInvalidProfile):
		return "profile"
	case errors.Is(err, loan.ErrInvalidLoanRequest):
		return "loan_request"
	default:
		return "unknown"
	}
}

// writeValidationError reports every failing field with 422. It returns
// false when err carries no field detail, leaving the response unwritten.
func writeValidationError(w http.ResponseWriter, err error) bool {
	fes := loan.FieldErrors(err)
	if len(fes) == 0 {
		return false
	}
	resp := errorResponse{Error: "validation failed"}
	for _, fe := range fes {
		resp.Fields = append(resp.Fields, fieldError{Kind: errorKind(fe), Field: fe.Field, Reason: fe.Reason})
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
	return true
}
