package settlement

import (
	"math"

	"tallermatch/internal/models"
)

// IVA rate applied to tax-exclusive figures.
const taxRate = 0.19

// Breakdown is the presentation-ready price composition of an offer.
// Figures are whole currency units; this currency has no fractional cents.
type Breakdown struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"iva"`
	Total    int64 `json:"total"`
}

// PartialSplit divides an offer between the bucket paid up front
// (parts + purchase management, tax included) and the bucket settled
// after the work is done (labor, tax included).
type PartialSplit struct {
	PaidNow  int64 `json:"pagado_ahora"`
	DueLater int64 `json:"pendiente_mano_obra"`
}

// Compute derives subtotal, tax and total for an offer.
//
// With an itemized breakdown the provider's quoted total wins for display
// even when it disagrees with subtotal plus tax; the discrepancy may be
// negotiated and is preserved as-is. Without a breakdown the subtotal and
// tax are derived back from the tax-inclusive total. Rounding happens
// once, here, at the presentation boundary.
func Compute(offer models.Offer) Breakdown {
	parts := sanitize(offer.Breakdown.PartsCost)
	labor := sanitize(offer.Breakdown.LaborCost)
	mgmt := sanitize(offer.Breakdown.PurchaseManagementCost)
	total := sanitize(offer.TotalOffered)

	if parts+labor > 0 {
		subtotal := labor + parts + mgmt
		return Breakdown{
			Subtotal: round(subtotal),
			Tax:      round(subtotal * taxRate),
			Total:    round(total),
		}
	}

	subtotal := total / (1 + taxRate)
	return Breakdown{
		Subtotal: round(subtotal),
		Tax:      round(total - subtotal),
		Total:    round(total),
	}
}

// Partial splits an offer into the paid-now and due-later buckets.
// Purchase management settles tax-inclusive inside the paid-now bucket;
// labor settles tax-inclusive on its own later. The asymmetry is
// intentional and mirrors how providers invoice sourced parts.
func Partial(offer models.Offer) PartialSplit {
	parts := sanitize(offer.Breakdown.PartsCost)
	labor := sanitize(offer.Breakdown.LaborCost)
	mgmt := sanitize(offer.Breakdown.PurchaseManagementCost)

	return PartialSplit{
		PaidNow:  round((parts + mgmt) * (1 + taxRate)),
		DueLater: round(labor * (1 + taxRate)),
	}
}

// sanitize coerces missing or non-numeric inputs to zero so a malformed
// payload never propagates NaN into money math.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func round(v float64) int64 {
	return int64(math.Round(v))
}
