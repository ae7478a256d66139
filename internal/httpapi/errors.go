package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"localmind/internal/manager"
	"localmind/internal/scheduler"
	"localmind/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps service errors to response codes.
func statusForError(err error) int {
	switch {
	case manager.IsNotReady(err), manager.IsDisposed(err), manager.IsDependencyUnavailable(err), scheduler.IsCategoryBusy(err):
		return http.StatusServiceUnavailable
	case manager.IsGenerationInFlight(err):
		return http.StatusConflict
	case manager.IsPromptTooLong(err):
		return http.StatusRequestEntityTooLarge
	case manager.IsTimeout(err):
		return http.StatusGatewayTimeout
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
