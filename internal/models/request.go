package models

import "time"

// ProviderType distinguishes fixed workshops from mobile mechanics.
type ProviderType string

const (
	ProviderWorkshop       ProviderType = "taller"
	ProviderMobileMechanic ProviderType = "mecanico_movil"
)

// ServiceRequest is the flat request record as exposed by the backend.
// Collection endpoints may wrap it in a GeoJSON feature envelope; the
// backend client unwraps before it reaches anything else.
type ServiceRequest struct {
	ID                  string     `json:"solicitud_id"`
	Status              string     `json:"estado"`
	VehicleID           string     `json:"vehiculo_id"`
	RequestedServiceIDs []string   `json:"servicios_solicitados"`
	CreatedAt           time.Time  `json:"fecha_creacion"`
	ExpiresAt           *time.Time `json:"fecha_expiracion,omitempty"`
	PaymentDeadline     *time.Time `json:"fecha_limite_pago,omitempty"`
	TotalOffers         int        `json:"total_ofertas"`
	SelectedOffer       *Offer     `json:"oferta_seleccionada,omitempty"`
	// Empty means an open/broadcast request.
	DirectedProviderIDs []string `json:"proveedores_dirigidos,omitempty"`
}

// HasOffers reports the derived "has offers" display condition.
func (r ServiceRequest) HasOffers() bool {
	return r.TotalOffers > 0
}

// CreateRequestInput carries the fields the user fills in before a
// request exists on the backend.
type CreateRequestInput struct {
	VehicleID           string   `json:"vehiculo_id"`
	RequestedServiceIDs []string `json:"servicios_solicitados"`
	DirectedProviderIDs []string `json:"proveedores_dirigidos,omitempty"`
}
