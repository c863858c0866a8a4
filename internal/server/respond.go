package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"reelbase/internal/app"
)

// envelope is the uniform response body: message plus optional payload, or
// an error string.
type envelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg})
}

// writeAppError maps application errors to HTTP statuses. Store failures and
// anything unclassified stay opaque 500s.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrInvalidArgument),
		errors.Is(err, app.ErrEmailAndPasswordRequired),
		errors.Is(err, app.ErrEmailAlreadyExists),
		errors.Is(err, app.ErrEmailRequired),
		errors.Is(err, app.ErrResetTokenInvalid),
		errors.Is(err, app.ErrPreferencesRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
