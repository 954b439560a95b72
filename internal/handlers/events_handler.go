package handlers

import (
	"net/http"

	"tallermatch/internal/realtime"
)

type EventsHandler struct {
	Router *realtime.Router
}

// NewOffers reports the ephemeral new-offer counters so screens can
// badge requests without refetching them.
func (h *EventsHandler) NewOffers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total": h.Router.TotalNewOffers(),
	})
}

func (h *EventsHandler) NewOffersForRequest(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get(":request_id")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"solicitud_id": requestID,
		"eventos":      h.Router.NewOffers(requestID),
	})
}

// ClearNewOffers drops a request's bucket once the UI surfaced it.
func (h *EventsHandler) ClearNewOffers(w http.ResponseWriter, r *http.Request) {
	h.Router.ClearNewOffers(r.URL.Query().Get(":request_id"))
	w.WriteHeader(http.StatusNoContent)
}
