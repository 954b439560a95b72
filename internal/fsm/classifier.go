package fsm

import (
	"tallermatch/internal/models"
)

// IsPartiallyPaid reports the partial-payment condition from the offer's
// payment sub-fields. The raw status enum can drift out of sync with the
// sub-fields, so the sub-fields are the source of truth here.
func IsPartiallyPaid(offer *models.Offer) bool {
	if offer == nil {
		return false
	}
	return offer.PartsPaymentStatus == models.PaymentPaid &&
		offer.LaborPaymentStatus == models.PaymentPending
}

// DisplayStatus derives the status to show for a request. When the
// selected offer has its parts bucket paid but labor still pending, the
// synthetic partially_paid status replaces any payment-adjacent raw
// status. Terminal statuses are never reclassified.
func DisplayStatus(rawStatus string, offer *models.Offer) string {
	if !IsPartiallyPaid(offer) {
		return rawStatus
	}
	switch rawStatus {
	case StatusPaid, StatusPendingPayment, StatusPartiallyPaid:
		return StatusPartiallyPaid
	}
	return rawStatus
}

// ValidateDeadlines checks the mutual-exclusion invariant between the
// offer-acceptance expiration and the payment deadline. A violation
// indicates an upstream bug; callers log it and carry on.
func ValidateDeadlines(req models.ServiceRequest) error {
	if req.ExpiresAt != nil && req.PaymentDeadline != nil {
		return models.ErrDeadlineConflict
	}
	return nil
}
