package fee

import (
	"math"
	"strconv"
	"strings"
	"time"

	"parkdeck/internal/entities"
)

// Hourly rates per vehicle type.
const (
	TwoWheelerRate  = 10
	FourWheelerRate = 30
)

// Rate returns the hourly rate for the given vehicle type. Anything that is
// not a two-wheeler is billed at the four-wheeler rate.
func Rate(t entities.VehicleType) int {
	if t == entities.TwoWheeler {
		return TwoWheelerRate
	}
	return FourWheelerRate
}

// ForDuration bills ceil(hours) at the hourly rate. Zero or negative
// durations bill nothing; there is no minimum here, that floor belongs to
// reservations only.
func ForDuration(hours float64, t entities.VehicleType) int {
	h := int(math.Ceil(hours))
	if h < 0 {
		h = 0
	}
	return h * Rate(t)
}

// LogAmount computes the charge for a vehicle log. Completed logs bill the
// backend-recorded duration. Open logs bill a live estimate against now,
// which keeps growing until the vehicle exits.
func LogAmount(entryTime time.Time, exitTime *time.Time, durationHours float64, t entities.VehicleType, now time.Time) int {
	if exitTime == nil {
		return ForDuration(now.Sub(entryTime).Hours(), t)
	}
	return ForDuration(durationHours, t)
}

// ReservationAmount bills ceil(end-start) hours with a one hour minimum,
// so a zero-length or inverted window still bills a single hour.
func ReservationAmount(start, end time.Time, t entities.VehicleType) int {
	hours := int(math.Ceil(end.Sub(start).Hours()))
	if hours < 1 {
		hours = 1
	}
	return hours * Rate(t)
}

// ParseDurationHours parses the backend's colon-delimited "hours:minutes"
// duration into fractional hours. Malformed input parses as zero.
func ParseDurationHours(s string) float64 {
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	var minutes int
	if len(parts) > 1 {
		minutes, _ = strconv.Atoi(parts[1])
	}
	return float64(hours) + float64(minutes)/60
}
