package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/felixroth/cableplan/internal/services"
	"github.com/felixroth/cableplan/pkg/models"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound      = "https://cableplan.io/problems/not-found"
	ProblemTypeBadRequest    = "https://cableplan.io/problems/bad-request"
	ProblemTypeInternal      = "https://cableplan.io/problems/internal-error"
	ProblemTypeUnprocessable = "https://cableplan.io/problems/validation-failed"
	ProblemTypeRateLimited   = "https://cableplan.io/problems/rate-limited"
	ProblemTypeConflict      = "https://cableplan.io/problems/conflict"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	})
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: instance,
	})
}

// Unprocessable writes a 422 problem response for domain validation failures.
func Unprocessable(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeUnprocessable,
		Title:    "Validation Failed",
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: instance,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	})
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeRateLimited,
		Title:    "Too Many Requests",
		Status:   http.StatusTooManyRequests,
		Detail:   detail,
		Instance: instance,
	})
}

// FromError maps a domain error onto the matching problem response so every
// handler reports failures the same way.
func FromError(w http.ResponseWriter, err error, instance string) {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, services.ErrNotFound):
		NotFound(w, err.Error(), instance)
	case models.IsValidation(err), errors.Is(err, models.ErrInvalidParent):
		Unprocessable(w, err.Error(), instance)
	case errors.Is(err, services.ErrAlreadyExists):
		WriteProblem(w, Problem{
			Type:     ProblemTypeConflict,
			Title:    "Conflict",
			Status:   http.StatusConflict,
			Detail:   err.Error(),
			Instance: instance,
		})
	default:
		InternalError(w, err.Error(), instance)
	}
}
