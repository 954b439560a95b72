package models

import "time"

// ServiceOffer is a catalog entry a user can stage into the cart. The
// backend exposes the service name through several optional nested paths;
// the cart resolves them in priority order.
type ServiceOffer struct {
	OfferServiceID      string       `json:"ofertaServicioID"`
	Name                string       `json:"nombre,omitempty"`
	ServiceInfo         *ServiceInfo `json:"informacionServicio,omitempty"`
	Service             *ServiceRef  `json:"servicio,omitempty"`
	PartsInclusivePrice float64      `json:"precioConRepuestos"`
	LaborOnlyPrice      float64      `json:"precioManoObra"`
	ProviderType        ProviderType `json:"tipoProveedor,omitempty"`
}

// ServiceInfo is the nested service-info shape some backend payloads use.
type ServiceInfo struct {
	Name string `json:"nombre"`
}

// ServiceRef is the nested service shape other backend payloads use.
type ServiceRef struct {
	Name string `json:"nombre"`
}

// Vehicle is the vehicle snapshot embedded in a cart item.
type Vehicle struct {
	VehicleID string `json:"vehiculoID"`
	Plate     string `json:"patente,omitempty"`
	Brand     string `json:"marca,omitempty"`
	Model     string `json:"modelo,omitempty"`
	Year      int    `json:"anio,omitempty"`
}

// CartItem is a locally staged, not-yet-submitted booking selection.
// It embeds full copies of the source offer and vehicle so the booking
// can be reconciled later without refetching.
type CartItem struct {
	CartItemID        string       `json:"cartItemId"`
	OfferServiceID    string       `json:"ofertaServicioID"`
	VehicleID         string       `json:"vehiculoID"`
	ScheduledDate     string       `json:"fecha"`
	ScheduledTimeSlot string       `json:"horario"`
	Price             float64      `json:"precio"`
	WithParts         bool         `json:"conRepuestos"`
	ProviderType      ProviderType `json:"tipoProveedor,omitempty"`
	ServiceName       string       `json:"nombreServicio"`
	Offer             ServiceOffer `json:"oferta"`
	Vehicle           Vehicle      `json:"vehiculo"`
	AddedAt           time.Time    `json:"agregadoEn"`
}
