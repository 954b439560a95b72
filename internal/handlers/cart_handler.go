package handlers

import (
	"encoding/json"
	"net/http"

	"tallermatch/internal/cart"
	"tallermatch/internal/models"
)

type CartHandler struct {
	Store *cart.Store
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": h.Store.Items(),
	})
}

type addToCartPayload struct {
	Offer             models.ServiceOffer `json:"oferta"`
	Vehicle           models.Vehicle      `json:"vehiculo"`
	ScheduledDate     string              `json:"fecha"`
	ScheduledTimeSlot string              `json:"horario"`
	WithParts         bool                `json:"conRepuestos"`
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var payload addToCartPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	item, err := h.Store.Add(r.Context(), cart.AddInput{
		Offer:             payload.Offer,
		Vehicle:           payload.Vehicle,
		ScheduledDate:     payload.ScheduledDate,
		ScheduledTimeSlot: payload.ScheduledTimeSlot,
		WithParts:         payload.WithParts,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ScheduledDate     *string `json:"fecha"`
		ScheduledTimeSlot *string `json:"horario"`
		WithParts         *bool   `json:"conRepuestos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	item, err := h.Store.Update(r.Context(), r.URL.Query().Get(":id"), cart.UpdateInput{
		ScheduledDate:     payload.ScheduledDate,
		ScheduledTimeSlot: payload.ScheduledTimeSlot,
		WithParts:         payload.WithParts,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Remove(r.Context(), r.URL.Query().Get(":id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Clear(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) IsServiceInCart(w http.ResponseWriter, r *http.Request) {
	serviceID := r.URL.Query().Get("service_id")
	writeJSON(w, http.StatusOK, map[string]bool{
		"en_carrito": h.Store.IsServiceInCart(serviceID),
	})
}

func (h *CartHandler) TotalByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.URL.Query().Get(":vehicle_id")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vehiculoID": vehicleID,
		"total":      h.Store.TotalByVehicle(vehicleID),
	})
}
