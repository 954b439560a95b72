package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tallermatch/internal/models"
)

// bearerToken extracts the access token the UI layer forwarded. An empty
// result is fine for read paths.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps engine errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNoSession):
		http.Error(w, "session required", http.StatusUnauthorized)
	case errors.Is(err, models.ErrRequestNotFound), errors.Is(err, models.ErrOfferNotFound), errors.Is(err, models.ErrCartItemNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidTransition):
		http.Error(w, "invalid status transition", http.StatusConflict)
	case errors.Is(err, models.ErrCartNotLoaded):
		http.Error(w, "cart not ready", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
