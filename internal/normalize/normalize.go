// Package normalize maps raw backend records into the client-side domain
// representation. Every function is total over well-formed payloads: the only
// rejection is a missing identifier, all other fields fall back to documented
// defaults.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"parkdeck/internal/client"
	"parkdeck/internal/entities"
	"parkdeck/internal/fee"
)

// missingPhone is the sentinel shown for users who never gave a number.
const missingPhone = "N/A"

var invoiceStatusVocabulary = map[string]entities.InvoiceStatus{
	"PAID":      entities.InvoicePaid,
	"UNPAID":    entities.InvoicePending,
	"CANCELLED": entities.InvoiceFailed,
}

// Slot maps a raw slot record. Floor and section derive from the first
// character of the location: "A"->0, "B"->1, anything else->2.
func Slot(raw client.SlotRecord) (entities.Slot, error) {
	if raw.SlotID == nil {
		return entities.Slot{}, fmt.Errorf("slot record missing slotId")
	}
	return entities.Slot{
		ID:         *raw.SlotID,
		Type:       entities.VehicleType(raw.Type),
		Location:   raw.Location,
		Floor:      FloorFromLocation(raw.Location),
		Section:    SectionFromLocation(raw.Location),
		Occupied:   raw.Occupied,
		ReservedBy: raw.ReservedBy,
	}, nil
}

// VehicleLog maps a raw log record. Status derives from exit-time presence.
// The amount bills the recorded duration for completed logs and a live
// estimate against now for open ones.
func VehicleLog(raw client.VehicleLogRecord, now time.Time) (entities.VehicleLog, error) {
	if raw.LogID == nil {
		return entities.VehicleLog{}, fmt.Errorf("vehicle log record missing logId")
	}

	entry := parseTime(raw.EntryTime)
	var exit *time.Time
	if raw.ExitTime != "" {
		t := parseTime(raw.ExitTime)
		exit = &t
	}

	status := entities.LogActive
	if exit != nil {
		status = entities.LogCompleted
	}

	slotType := entities.VehicleType(raw.SlotType)
	duration := fee.ParseDurationHours(raw.Duration)

	log := entities.VehicleLog{
		ID:            *raw.LogID,
		VehicleNumber: raw.VehicleNumber,
		EntryTime:     entry,
		ExitTime:      exit,
		DurationHours: duration,
		SlotType:      slotType,
		Status:        status,
		Amount:        fee.LogAmount(entry, exit, duration, slotType, now),
	}
	if raw.UserID != nil {
		log.UserID = *raw.UserID
	}
	if raw.SlotID != nil {
		log.SlotID = *raw.SlotID
	}
	return log, nil
}

// Reservation maps a raw reservation record, lower-casing the status and
// computing the amount from the booked window.
func Reservation(raw client.ReservationRecord) (entities.Reservation, error) {
	if raw.ReservationID == nil {
		return entities.Reservation{}, fmt.Errorf("reservation record missing reservationId")
	}

	start := parseTime(raw.StartTime)
	end := parseTime(raw.EndTime)
	vehicleType := entities.VehicleType(raw.Type)
	if vehicleType == "" {
		vehicleType = entities.FourWheeler
	}

	reservation := entities.Reservation{
		ID:            *raw.ReservationID,
		VehicleNumber: raw.VehicleNumber,
		StartTime:     start,
		EndTime:       end,
		Type:          vehicleType,
		Status:        entities.ReservationStatus(strings.ToLower(raw.Status)),
		Amount:        fee.ReservationAmount(start, end, vehicleType),
		CreatedAt:     start,
	}
	if raw.UserID != nil {
		reservation.UserID = *raw.UserID
	}
	if raw.SlotID != nil {
		reservation.SlotID = *raw.SlotID
	}
	return reservation, nil
}

// Invoice maps a raw invoice record. The status vocabulary is a fixed table;
// anything outside it passes through lower-cased.
func Invoice(raw client.InvoiceRecord) (entities.Invoice, error) {
	if raw.InvoiceID == nil {
		return entities.Invoice{}, fmt.Errorf("invoice record missing invoiceId")
	}

	invoice := entities.Invoice{
		ID:            *raw.InvoiceID,
		Amount:        raw.Amount,
		PaymentMethod: strings.ToLower(raw.PaymentMethod),
		Status:        InvoiceStatus(raw.Status),
		Timestamp:     parseTime(raw.Timestamp),
		Description:   fmt.Sprintf("Invoice #%d", *raw.InvoiceID),
		ReservationID: raw.ReservationID,
		LogID:         raw.LogID,
	}
	if raw.UserID != nil {
		invoice.UserID = *raw.UserID
	}
	return invoice, nil
}

// User maps a raw user record, lower-casing the role and defaulting a
// missing phone to the sentinel.
func User(raw client.UserRecord) (entities.User, error) {
	if raw.ID == nil {
		return entities.User{}, fmt.Errorf("user record missing id")
	}

	phone := raw.Phone
	if phone == "" {
		phone = missingPhone
	}
	return entities.User{
		ID:    *raw.ID,
		Name:  raw.Name,
		Email: raw.Email,
		Phone: phone,
		Role:  entities.Role(strings.ToLower(raw.Role)),
	}, nil
}

// InvoiceStatus maps the backend's status vocabulary onto the client one.
func InvoiceStatus(raw string) entities.InvoiceStatus {
	if mapped, ok := invoiceStatusVocabulary[raw]; ok {
		return mapped
	}
	return entities.InvoiceStatus(strings.ToLower(raw))
}

// FloorFromLocation derives the floor from a location like "A12".
func FloorFromLocation(location string) int {
	switch SectionFromLocation(location) {
	case "A":
		return 0
	case "B":
		return 1
	default:
		return 2
	}
}

// SectionFromLocation is the first character of the location string.
func SectionFromLocation(location string) string {
	if location == "" {
		return ""
	}
	return location[:1]
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTime accepts the timestamp layouts the backend services emit. An
// unparseable value yields the zero time rather than an error.
func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
