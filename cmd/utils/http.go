package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkora/linkora-server/cmd/models"
)

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its status code. Unknown errors are
// storage failures; the client gets a generic 500 rather than the raw error.
func WriteError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		writeErrorJSON(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrPostNotFound):
		writeErrorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrSelfFollow),
		errors.Is(err, models.ErrAlreadyFollowing),
		errors.Is(err, models.ErrNotFollowing):
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeErrorJSON(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeErrorJSON(w, http.StatusConflict, err.Error())
	default:
		writeErrorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"message": message})
}
