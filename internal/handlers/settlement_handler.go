package handlers

import (
	"encoding/json"
	"net/http"

	"tallermatch/internal/fsm"
	"tallermatch/internal/models"
	"tallermatch/internal/settlement"
)

type SettlementHandler struct{}

// Preview computes the presentation-ready settlement figures for an
// offer payload: full breakdown, partial-payment split, and the display
// status derived from the payment sub-fields.
func (h *SettlementHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var offer models.Offer
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"desglose":       settlement.Compute(offer),
		"pago_parcial":   settlement.Partial(offer),
		"estado_visible": fsm.DisplayStatus(offer.Status, &offer),
		"parcialmente_pagado": fsm.IsPartiallyPaid(&offer),
	})
}
