package httpadapter

import (
	"errors"
	"net/http"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/engine"
	"github.com/couchcryptid/saferoute-scoring-service/internal/registry"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

type successBody struct {
	Success bool `json:"success"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	sharedobs.WriteJSON(w, status, v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidCoordinate),
		errors.Is(err, domain.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRouteNotFound),
		errors.Is(err, engine.ErrSessionNotFound),
		errors.Is(err, registry.ErrHazardNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorBody{Success: false, Error: msg})
}
