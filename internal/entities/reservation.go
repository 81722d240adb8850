package entities

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a pre-booked slot occupancy for a time window. Cancellation
// is a status transition; reservations are never physically deleted.
type Reservation struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"userId"`
	SlotID        int64             `json:"slotId"`
	VehicleNumber string            `json:"vehicleNumber"`
	StartTime     time.Time         `json:"startTime"`
	EndTime       time.Time         `json:"endTime"`
	Type          VehicleType       `json:"type"`
	Status        ReservationStatus `json:"status"`
	Amount        int               `json:"amount"`
	CreatedAt     time.Time         `json:"createdAt"`
}
