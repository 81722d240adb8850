package entities

// VehicleType is the capacity class of a slot or vehicle.
type VehicleType string

const (
	TwoWheeler  VehicleType = "2W"
	FourWheeler VehicleType = "4W"
)

// Slot is a physical parking space. Floor and Section are derived from the
// first character of Location: "A"->0, "B"->1, anything else->2.
type Slot struct {
	ID         int64       `json:"id"`
	Type       VehicleType `json:"type"`
	Location   string      `json:"location"`
	Floor      int         `json:"floor"`
	Section    string      `json:"section"`
	Occupied   bool        `json:"isOccupied"`
	ReservedBy *int64      `json:"reservedBy,omitempty"`
}
