package entities

import "time"

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceFailed  InvoiceStatus = "failed"
)

// Invoice is a billing record tied to either a reservation or a vehicle log.
type Invoice struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"userId"`
	Amount        float64       `json:"amount"`
	PaymentMethod string        `json:"paymentMethod"`
	Status        InvoiceStatus `json:"status"`
	Timestamp     time.Time     `json:"timestamp"`
	Description   string        `json:"description"`
	ReservationID *int64        `json:"reservationId,omitempty"`
	LogID         *int64        `json:"logId,omitempty"`
}
