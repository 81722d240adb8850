package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"parkdeck/internal/client"
	"parkdeck/internal/entities"
	"parkdeck/internal/service"
	"parkdeck/internal/session"
	"parkdeck/internal/store"
)

// ParkingHandler exposes the domain store to the dashboard.
type ParkingHandler struct {
	Store    *store.Store
	Session  *session.Session
	Payments *service.PaymentService
	Notifier *service.NotifyService
}

func NewParkingHandler(st *store.Store, sess *session.Session, payments *service.PaymentService, notifier *service.NotifyService) *ParkingHandler {
	return &ParkingHandler{Store: st, Session: sess, Payments: payments, Notifier: notifier}
}

func (h *ParkingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Stats())
}

// Slots.

func (h *ParkingHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Slots())
}

func (h *ParkingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	vehicleType := entities.VehicleType(r.URL.Query().Get("type"))
	writeJSON(w, http.StatusOK, h.Store.AvailableSlots(r.Context(), vehicleType))
}

func (h *ParkingHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var req SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Store.AddSlot(r.Context(), req.Location, entities.VehicleType(req.Type)); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Slot added"})
}

func (h *ParkingHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	update := store.SlotUpdate{
		Location: req.Location,
		Type:     entities.VehicleType(req.Type),
		Occupied: req.Occupied,
	}
	if err := h.Store.UpdateSlot(r.Context(), id, update); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Slot updated"})
}

func (h *ParkingHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := h.Store.RemoveSlot(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Slot removed"})
}

// Vehicle logs.

func (h *ParkingHandler) ListVehicleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.VehicleLogs())
}

func (h *ParkingHandler) VehicleEntry(w http.ResponseWriter, r *http.Request) {
	var req VehicleEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Store.AddVehicleLog(r.Context(), req.VehicleNumber, req.UserID, req.SlotID); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Vehicle entry logged"})
}

func (h *ParkingHandler) VehicleExit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := h.Store.CompleteVehicleLog(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle exit recorded"})
}

// Reservations.

func (h *ParkingHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Reservations())
}

func (h *ParkingHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	start, err := parseTimestamp(req.StartTime)
	if err != nil {
		http.Error(w, "Invalid start time", http.StatusBadRequest)
		return
	}
	end, err := parseTimestamp(req.EndTime)
	if err != nil {
		http.Error(w, "Invalid end time", http.StatusBadRequest)
		return
	}

	reservation, err := h.Store.AddReservation(r.Context(), store.ReservationDraft{
		UserID:        req.UserID,
		SlotID:        req.SlotID,
		VehicleNumber: req.VehicleNumber,
		StartTime:     start,
		EndTime:       end,
		Type:          entities.VehicleType(req.Type),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	if owner, ok := h.userByID(reservation.UserID); ok {
		h.Notifier.SendReservationEmail(owner, reservation, "confirmed")
		h.Notifier.SendReservationSMS(owner, reservation, "confirmed")
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func (h *ParkingHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req ReservationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	update := store.ReservationUpdate{
		SlotID:        req.SlotID,
		VehicleNumber: req.VehicleNumber,
	}
	if req.StartTime != "" {
		start, err := parseTimestamp(req.StartTime)
		if err != nil {
			http.Error(w, "Invalid start time", http.StatusBadRequest)
			return
		}
		update.StartTime = &start
	}
	if req.EndTime != "" {
		end, err := parseTimestamp(req.EndTime)
		if err != nil {
			http.Error(w, "Invalid end time", http.StatusBadRequest)
			return
		}
		update.EndTime = &end
	}
	if req.Status != "" {
		target := entities.ReservationStatus(req.Status)
		if err := h.checkReservationTransition(id, target); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		update.Status = target
	}

	if err := h.Store.UpdateReservation(r.Context(), id, update); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reservation updated"})
}

func (h *ParkingHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := h.checkReservationTransition(id, entities.ReservationCancelled); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err := h.Store.CancelReservation(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	for _, reservation := range h.Store.Reservations() {
		if reservation.ID != id {
			continue
		}
		if owner, ok := h.userByID(reservation.UserID); ok {
			h.Notifier.SendReservationEmail(owner, reservation, "cancelled")
			h.Notifier.SendReservationSMS(owner, reservation, "cancelled")
		}
		break
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reservation cancelled"})
}

// Billing.

func (h *ParkingHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Invoices())
}

// PayInvoice marks an invoice paid. Card payments first open a Stripe
// checkout session for the invoice amount and return its URL alongside the
// confirmation.
func (h *ParkingHandler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req PayInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	invoice, ok := h.invoiceByID(id)
	if !ok {
		http.Error(w, "Invoice not found", http.StatusNotFound)
		return
	}
	if !entities.CanTransitionInvoice(invoice.Status, entities.InvoicePaid) {
		http.Error(w, fmt.Sprintf("invoice %d is already %s", id, invoice.Status), http.StatusConflict)
		return
	}

	response := map[string]string{"message": "Invoice paid"}
	if req.PaymentMethod == "CARD" || req.PaymentMethod == "ONLINE" {
		email := ""
		if owner, ok := h.userByID(invoice.UserID); ok {
			email = owner.Email
		}
		url, sessionID, err := h.Payments.CreateCheckoutSession(
			int64(invoice.Amount*100), "inr", invoice.Description, email)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		response["checkoutUrl"] = url
		response["sessionId"] = sessionID
	}

	if err := h.Store.MarkInvoicePaid(r.Context(), id, req.PaymentMethod); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// FailInvoice marks an invoice failed. A checkout session ID in the body
// triggers a best-effort Stripe refund for card payments that already went
// through.
func (h *ParkingHandler) FailInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req FailInvoiceRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	invoice, ok := h.invoiceByID(id)
	if !ok {
		http.Error(w, "Invoice not found", http.StatusNotFound)
		return
	}
	if !entities.CanTransitionInvoice(invoice.Status, entities.InvoiceFailed) {
		http.Error(w, fmt.Sprintf("invoice %d is already %s", id, invoice.Status), http.StatusConflict)
		return
	}
	if err := h.Store.MarkInvoiceFailed(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if req.SessionID != "" {
		if err := h.Payments.RefundPaymentBySessionID(req.SessionID); err != nil {
			logrus.Warnf("refund for invoice %d (session %s) failed: %v", id, req.SessionID, err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invoice marked failed"})
}

// Users (admin only).

func (h *ParkingHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w) {
		return
	}
	writeJSON(w, http.StatusOK, h.Store.Users())
}

func (h *ParkingHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w) {
		return
	}
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	err := h.Store.AddUser(r.Context(), client.RegisterUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User added"})
}

func (h *ParkingHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	err = h.Store.UpdateUser(r.Context(), id, client.UpdateUserRequest{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  req.Role,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User updated"})
}

func (h *ParkingHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := h.Store.RemoveUser(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User removed"})
}

// Helpers.

func (h *ParkingHandler) requireAdmin(w http.ResponseWriter) bool {
	if h.Session.Role() != entities.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (h *ParkingHandler) checkReservationTransition(id int64, target entities.ReservationStatus) error {
	for _, reservation := range h.Store.Reservations() {
		if reservation.ID == id {
			if !entities.CanTransitionReservation(reservation.Status, target) {
				return fmt.Errorf("reservation %d cannot go from %s to %s", id, reservation.Status, target)
			}
			return nil
		}
	}
	// Not in the local view; let the backend decide.
	return nil
}

func (h *ParkingHandler) invoiceByID(id int64) (entities.Invoice, bool) {
	for _, invoice := range h.Store.Invoices() {
		if invoice.ID == id {
			return invoice, true
		}
	}
	return entities.Invoice{}, false
}

func (h *ParkingHandler) userByID(id int64) (entities.User, bool) {
	for _, user := range h.Store.Users() {
		if user.ID == id {
			return user, true
		}
	}
	if current, ok := h.Session.Current(); ok && current.ID == id {
		return current, true
	}
	return entities.User{}, false
}

func pathID(r *http.Request) (int64, error) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}

var requestTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range requestTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
