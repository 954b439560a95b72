package fsm

// Status constants used by the service-request state machine.
const (
	StatusCreated           = "created"
	StatusSelectingServices = "selecting_services"
	StatusPublished         = "published"
	StatusAwarded           = "awarded"
	StatusPendingPayment    = "pending_payment"
	StatusPaid              = "paid"
	StatusPartiallyPaid     = "partially_paid"
	StatusInProgress        = "in_progress"
	StatusCompleted         = "completed"
	StatusExpired           = "expired"
	StatusCancelled         = "cancelled"
)

// Transitions are driven by backend mutations (create, add-services,
// publish, select-offer, cancel) or by deadline expiry. The client never
// invents a transition locally; partially_paid appears both as a backend
// status and as a display-only projection (see classifier.go).
var transitions = map[string]map[string]struct{}{
	StatusCreated: {
		StatusSelectingServices: {},
		StatusCancelled:         {},
	},
	StatusSelectingServices: {
		StatusPublished: {},
		StatusCancelled: {},
	},
	StatusPublished: {
		StatusAwarded:   {},
		StatusExpired:   {},
		StatusCancelled: {},
	},
	StatusAwarded: {
		StatusPendingPayment: {},
		StatusExpired:        {},
		StatusCancelled:      {},
	},
	StatusPendingPayment: {
		StatusPaid:          {},
		StatusPartiallyPaid: {},
		StatusExpired:       {},
		StatusCancelled:     {},
	},
	StatusPartiallyPaid: {
		StatusPaid:       {},
		StatusInProgress: {},
	},
	StatusPaid: {
		StatusInProgress: {},
	},
	StatusInProgress: {
		StatusCompleted: {},
	},
	StatusCompleted: {},
	StatusExpired:   {},
	StatusCancelled: {},
}

// CanTransition returns whether a request can move from the current
// status to the target status.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTerminal reports whether the status never re-opens.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusExpired, StatusCancelled:
		return true
	}
	return false
}
