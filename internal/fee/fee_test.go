package fee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parkdeck/internal/entities"
)

func TestRate(t *testing.T) {
	assert.Equal(t, 10, Rate(entities.TwoWheeler))
	assert.Equal(t, 30, Rate(entities.FourWheeler))
	assert.Equal(t, 30, Rate(entities.VehicleType("TRUCK")))
}

func TestForDuration(t *testing.T) {
	testCases := []struct {
		name     string
		hours    float64
		vehicle  entities.VehicleType
		expected int
	}{
		{name: "exact hours", hours: 2, vehicle: entities.FourWheeler, expected: 60},
		{name: "partial hour rounds up", hours: 1.01, vehicle: entities.TwoWheeler, expected: 20},
		{name: "just under an hour", hours: 0.5, vehicle: entities.FourWheeler, expected: 30},
		{name: "zero bills nothing", hours: 0, vehicle: entities.TwoWheeler, expected: 0},
		{name: "negative clamps to zero", hours: -3, vehicle: entities.FourWheeler, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ForDuration(tc.hours, tc.vehicle))
		})
	}
}

func TestLogAmount(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(2 * time.Hour)
	now := entry.Add(90 * time.Minute)

	t.Run("completed log bills recorded duration", func(t *testing.T) {
		assert.Equal(t, 60, LogAmount(entry, &exit, 2, entities.FourWheeler, now))
	})

	t.Run("open log bills live estimate", func(t *testing.T) {
		// 1.5 hours elapsed rounds up to 2.
		assert.Equal(t, 20, LogAmount(entry, nil, 0, entities.TwoWheeler, now))
	})

	t.Run("open log grows with time", func(t *testing.T) {
		later := entry.Add(5 * time.Hour)
		assert.Equal(t, 50, LogAmount(entry, nil, 0, entities.TwoWheeler, later))
	})
}

func TestReservationAmount(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		end      time.Time
		vehicle  entities.VehicleType
		expected int
	}{
		{name: "three hour window", end: start.Add(3 * time.Hour), vehicle: entities.FourWheeler, expected: 90},
		{name: "partial hour rounds up", end: start.Add(150 * time.Minute), vehicle: entities.TwoWheeler, expected: 30},
		{name: "zero window bills one hour", end: start, vehicle: entities.FourWheeler, expected: 30},
		{name: "inverted window bills one hour", end: start.Add(-2 * time.Hour), vehicle: entities.TwoWheeler, expected: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ReservationAmount(start, tc.end, tc.vehicle))
		})
	}
}

func TestParseDurationHours(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected float64
	}{
		{name: "hours and minutes", raw: "2:30", expected: 2.5},
		{name: "hours only", raw: "3", expected: 3},
		{name: "zero", raw: "0:00", expected: 0},
		{name: "empty", raw: "", expected: 0},
		{name: "garbage", raw: "abc", expected: 0},
		{name: "garbage minutes ignored", raw: "1:xx", expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, ParseDurationHours(tc.raw), 1e-9)
		})
	}
}
