package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"content-paywall/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses. Messages
// stay generic so failures never leak another user's transaction state.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid input")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrContentNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, domain.ErrContentIsFree):
		writeJSONError(w, http.StatusConflict, "content is free")
	case errors.Is(err, domain.ErrAlreadyOwned):
		writeJSONError(w, http.StatusConflict, "already owned")
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrAlreadyProcessed):
		writeJSONError(w, http.StatusConflict, "state does not allow this operation")
	case errors.Is(err, domain.ErrDependencyUnavailable), errors.Is(err, domain.ErrLockNotAcquired):
		writeJSONError(w, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
