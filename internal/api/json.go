package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/designsystemsinternational/react-admin-github/internal/apperr"
)

// envelope is the response body shape shared by every endpoint.
type envelope struct {
	Data  any    `json:"data,omitempty"`
	Total *int   `json:"total,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

func writePage(w http.ResponseWriter, data any, total int) {
	writeJSON(w, http.StatusOK, envelope{Data: data, Total: &total})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var upstream *apperr.UpstreamError
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperr.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrConflict):
		status, message = http.StatusConflict, "conflict"
	case errors.Is(err, apperr.ErrValidation):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, apperr.ErrBadRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &upstream):
		// Backend failures pass through with their status and message.
		status, message = upstream.Status, upstream.Message
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
	}

	writeJSON(w, status, envelope{Error: message})
}
