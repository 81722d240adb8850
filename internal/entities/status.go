package entities

// Allowed status transitions. Terminal states map to an empty set.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationActive, ReservationCancelled},
	ReservationActive:    {ReservationCompleted, ReservationCancelled},
	ReservationCompleted: {},
	ReservationCancelled: {},
}

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoicePending: {InvoicePaid, InvoiceFailed},
	InvoicePaid:    {},
	InvoiceFailed:  {},
}

// CanTransitionReservation reports whether from -> to is an allowed
// reservation status change.
func CanTransitionReservation(from, to ReservationStatus) bool {
	if from == to {
		return true
	}
	for _, s := range reservationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionInvoice reports whether from -> to is an allowed invoice
// status change.
func CanTransitionInvoice(from, to InvoiceStatus) bool {
	if from == to {
		return true
	}
	for _, s := range invoiceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionLog reports whether from -> to is an allowed vehicle log
// status change. The only move is active -> completed.
func CanTransitionLog(from, to LogStatus) bool {
	return from == to || (from == LogActive && to == LogCompleted)
}
