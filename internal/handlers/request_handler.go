package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"tallermatch/internal/countdown"
	"tallermatch/internal/fsm"
	"tallermatch/internal/models"
	"tallermatch/internal/services"
)

type RequestHandler struct {
	Service *services.RequestService
}

// countdownView is the deadline descriptor embedded in request views.
// A request shows at most one countdown: the payment window once an
// offer is selected, otherwise the offer-acceptance window.
type countdownView struct {
	Kind      string              `json:"tipo"`
	Remaining countdown.Remaining `json:"restante"`
	Band      countdown.Band      `json:"urgencia"`
}

type requestView struct {
	models.ServiceRequest
	DisplayStatus string         `json:"estado_visible"`
	Countdown     *countdownView `json:"cuenta_regresiva,omitempty"`
}

func viewOf(req models.ServiceRequest, now time.Time) requestView {
	view := requestView{
		ServiceRequest: req,
		DisplayStatus:  fsm.DisplayStatus(req.Status, req.SelectedOffer),
	}

	var target *time.Time
	kind := ""
	switch {
	case req.PaymentDeadline != nil:
		target, kind = req.PaymentDeadline, "pago"
	case req.ExpiresAt != nil:
		target, kind = req.ExpiresAt, "ofertas"
	}
	if target != nil {
		remaining, _ := countdown.Until(now, *target)
		view.Countdown = &countdownView{
			Kind:      kind,
			Remaining: remaining,
			Band:      countdown.Urgency(now, *target),
		}
	}
	return view
}

func viewsOf(requests []models.ServiceRequest) []requestView {
	now := time.Now()
	views := make([]requestView, len(requests))
	for i, req := range requests {
		views[i] = viewOf(req, now)
	}
	return views
}

func (h *RequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListRequests(r.Context(), bearerToken(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(requests))
}

func (h *RequestHandler) ListActiveRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListActiveRequests(r.Context(), bearerToken(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(requests))
}

func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(":id")
	req, err := h.Service.GetRequest(r.Context(), bearerToken(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(req, time.Now()))
}

func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var input models.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	req, err := h.Service.CreateRequest(r.Context(), bearerToken(r), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(req, time.Now()))
}

func (h *RequestHandler) AddServices(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ServiceIDs []string `json:"servicios_solicitados"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	req, err := h.Service.AddServices(r.Context(), bearerToken(r), r.URL.Query().Get(":id"), input.ServiceIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(req, time.Now()))
}

func (h *RequestHandler) PublishRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.PublishRequest(r.Context(), bearerToken(r), r.URL.Query().Get(":id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(req, time.Now()))
}

func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.CancelRequest(r.Context(), bearerToken(r), r.URL.Query().Get(":id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RequestHandler) SelectOffer(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OfferID string `json:"oferta_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	req, err := h.Service.SelectOffer(r.Context(), bearerToken(r), r.URL.Query().Get(":id"), input.OfferID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(req, time.Now()))
}
