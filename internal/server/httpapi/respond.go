package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okarpov/articles-api/internal/errs"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// writeServiceError maps service sentinels to HTTP statuses. Messages carry
// no detail beyond what the sentinel already discloses; notFoundMsg and
// forbiddenMsg localize the resource wording per handler.
func writeServiceError(w http.ResponseWriter, err error, notFoundMsg, forbiddenMsg string) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, errs.ErrForbidden):
		writeError(w, http.StatusForbidden, forbiddenMsg)
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "User with this login already exists")
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
