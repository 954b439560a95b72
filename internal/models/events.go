package models

import "time"

// Push event types delivered over the backend WebSocket feed.
const (
	EventNewOffer       = "nueva_oferta"
	EventRequestAwarded = "solicitud_adjudicada"
)

// PushEnvelope is a typed inbound message from the push channel.
type PushEnvelope struct {
	Type      string `json:"type"`
	RequestID string `json:"solicitud_id"`
	Offer     *Offer `json:"oferta,omitempty"`
}

// NewOfferEvent is an ephemeral "new offer arrived" marker, held only in
// volatile memory and cleared explicitly by the UI.
type NewOfferEvent struct {
	RequestID  string    `json:"solicitud_id"`
	Offer      *Offer    `json:"oferta,omitempty"`
	ReceivedAt time.Time `json:"recibido_en"`
}
