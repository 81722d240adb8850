package entities

// Stats is the derived aggregate over the live collections. It is recomputed
// from scratch after every load, never stored.
type Stats struct {
	TotalSlots         int     `json:"totalSlots"`
	OccupiedSlots      int     `json:"occupiedSlots"`
	AvailableSlots     int     `json:"availableSlots"`
	Revenue            float64 `json:"revenue"`
	ActiveReservations int     `json:"activeReservations"`
}
