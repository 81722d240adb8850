package entities

import "time"

type LogStatus string

const (
	LogActive    LogStatus = "active"
	LogCompleted LogStatus = "completed"
)

// VehicleLog records one parking session from entry to (optional) exit.
// Status is active exactly while ExitTime is unset. DurationHours is the
// backend-recorded duration once the vehicle has left, zero before that.
type VehicleLog struct {
	ID            int64       `json:"id"`
	VehicleNumber string      `json:"vehicleNumber"`
	EntryTime     time.Time   `json:"entryTime"`
	ExitTime      *time.Time  `json:"exitTime,omitempty"`
	DurationHours float64     `json:"duration"`
	UserID        int64       `json:"userId"`
	SlotID        int64       `json:"slotId"`
	SlotType      VehicleType `json:"slotType"`
	Status        LogStatus   `json:"status"`
	Amount        int         `json:"amount"`
}
