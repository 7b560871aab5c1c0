package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/minhtc/folio/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps domain errors onto status codes: validation -> 400,
// not-found -> 404, conflict -> 409, anything else -> 500 with a generic
// message so internals do not leak.
func writeError(w http.ResponseWriter, err error) {
	var validation *apperrors.ErrValidation
	switch {
	case errors.As(err, &validation):
		writeMessage(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperrors.ErrConflict):
		writeMessage(w, http.StatusConflict, "already exists")
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
