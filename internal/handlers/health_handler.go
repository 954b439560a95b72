package handlers

import (
	"net/http"

	"tallermatch/internal/realtime"
)

// CacheInspector is implemented by cache backends that can enumerate
// their keys; the memory backend does, Redis stays opaque.
type CacheInspector interface {
	Keys() []string
}

type HealthHandler struct {
	Router *realtime.Router
	Cache  CacheInspector
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status": "ok",
	}
	if err := h.Router.LastError(); err != nil {
		payload["realtime"] = err.Error()
	}
	if h.Cache != nil {
		payload["cache_keys"] = h.Cache.Keys()
	}
	writeJSON(w, http.StatusOK, payload)
}
