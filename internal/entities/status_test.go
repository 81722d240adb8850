package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionReservation(t *testing.T) {
	testCases := []struct {
		name    string
		from    ReservationStatus
		to      ReservationStatus
		allowed bool
	}{
		{name: "pending to active", from: ReservationPending, to: ReservationActive, allowed: true},
		{name: "pending to cancelled", from: ReservationPending, to: ReservationCancelled, allowed: true},
		{name: "pending to completed", from: ReservationPending, to: ReservationCompleted, allowed: false},
		{name: "active to completed", from: ReservationActive, to: ReservationCompleted, allowed: true},
		{name: "active to cancelled", from: ReservationActive, to: ReservationCancelled, allowed: true},
		{name: "completed is terminal", from: ReservationCompleted, to: ReservationActive, allowed: false},
		{name: "cancelled is terminal", from: ReservationCancelled, to: ReservationPending, allowed: false},
		{name: "same status is a no-op", from: ReservationActive, to: ReservationActive, allowed: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransitionReservation(tc.from, tc.to))
		})
	}
}

func TestCanTransitionInvoice(t *testing.T) {
	assert.True(t, CanTransitionInvoice(InvoicePending, InvoicePaid))
	assert.True(t, CanTransitionInvoice(InvoicePending, InvoiceFailed))
	assert.False(t, CanTransitionInvoice(InvoicePaid, InvoiceFailed))
	assert.False(t, CanTransitionInvoice(InvoiceFailed, InvoicePaid))
	assert.True(t, CanTransitionInvoice(InvoicePaid, InvoicePaid))
}

func TestCanTransitionLog(t *testing.T) {
	assert.True(t, CanTransitionLog(LogActive, LogCompleted))
	assert.False(t, CanTransitionLog(LogCompleted, LogActive))
	assert.True(t, CanTransitionLog(LogActive, LogActive))
}
