package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

// WriteJSONError writes {"error": message} with the given status.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusFromError maps use case errors to HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAvailableOffline):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAvailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnknownCategory), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failures behind a generic message.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
