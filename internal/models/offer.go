package models

// PaymentStatus tracks one payable bucket of an offer.
type PaymentStatus string

const (
	PaymentNotApplicable PaymentStatus = "no_aplica"
	PaymentPending       PaymentStatus = "pendiente"
	PaymentPaid          PaymentStatus = "pagado"
)

// PriceBreakdown itemizes an offer. All figures are tax-exclusive.
type PriceBreakdown struct {
	PartsCost              float64 `json:"costo_repuestos"`
	LaborCost              float64 `json:"costo_mano_obra"`
	PurchaseManagementCost float64 `json:"costo_gestion_compra"`
}

// Offer is a provider's priced response to a service request.
//
// TotalOffered is tax-inclusive and authoritative: providers may quote a
// figure that does not equal the itemized breakdown times 1.19, and the
// quoted total always wins for display. The two are never reconciled.
type Offer struct {
	ID                 string         `json:"oferta_id"`
	RequestID          string         `json:"solicitud_id"`
	ProviderID         string         `json:"proveedor_id"`
	ProviderType       ProviderType   `json:"tipo_proveedor"`
	Breakdown          PriceBreakdown `json:"desglose"`
	TotalOffered       float64        `json:"precio_total_ofrecido"`
	PartsPaymentStatus PaymentStatus  `json:"estado_pago_repuestos"`
	LaborPaymentStatus PaymentStatus  `json:"estado_pago_mano_obra"`
	Status             string         `json:"estado"`
	ScheduledDate      string         `json:"fecha_agendada,omitempty"`
	ScheduledTime      string         `json:"hora_agendada,omitempty"`
	WarrantyText       string         `json:"garantia,omitempty"`
	// Non-empty links a secondary/additional offer to the accepted
	// offer it extends.
	ParentOfferID string `json:"oferta_padre_id,omitempty"`
}
