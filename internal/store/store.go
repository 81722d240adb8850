// Package store owns the normalized in-memory collections and keeps them in
// sync with the parking backend. Every mutation performs exactly one backend
// call and, on success, reloads the affected collections; the local view is
// never mutated directly, so after any confirmed operation it matches server
// state. Statistics are re-derived after every load.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"parkdeck/internal/client"
	"parkdeck/internal/entities"
	"parkdeck/internal/normalize"
)

// Store is the single owner of the domain collections. Mutations are
// serialized by opMu so a reload never interleaves with another operation's
// partial update; reads see a consistent snapshot under mu.
type Store struct {
	backend *client.Client
	now     func() time.Time

	opMu sync.Mutex

	mu           sync.RWMutex
	role         entities.Role
	userID       int64
	slots        []entities.Slot
	vehicleLogs  []entities.VehicleLog
	reservations []entities.Reservation
	invoices     []entities.Invoice
	users        []entities.User
	stats        entities.Stats
}

func New(backend *client.Client) *Store {
	return &Store{backend: backend, now: time.Now}
}

// LoadAll loads the collections appropriate for the role: slots always,
// vehicle logs / reservations / invoices scoped to userID for customers and
// unscoped for admin and staff, users for admin only. The constituent loads
// run concurrently and are joined; a failed load does not roll back the
// collections that did load, the caller gets a single aggregate error.
func (s *Store) LoadAll(ctx context.Context, role entities.Role, userID int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.role = role
	s.userID = userID
	s.mu.Unlock()

	loaders := map[collection]func(context.Context) error{
		collectionSlots:        s.loadSlots,
		collectionVehicleLogs:  s.loadVehicleLogs,
		collectionReservations: s.loadReservations,
		collectionInvoices:     s.loadInvoices,
		collectionUsers:        s.loadUsers,
	}

	cols := collectionsFor(role)
	errs := make([]error, len(cols))
	var wg sync.WaitGroup
	for i, col := range cols {
		wg.Add(1)
		go func(i int, load func(context.Context) error) {
			defer wg.Done()
			errs[i] = load(ctx)
		}(i, loaders[col])
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	return nil
}

func (s *Store) loadSlots(ctx context.Context) error {
	records, err := s.backend.AllSlots(ctx)
	if err != nil {
		return fmt.Errorf("loading slots: %w", err)
	}
	slots := make([]entities.Slot, 0, len(records))
	for _, r := range records {
		slot, err := normalize.Slot(r)
		if err != nil {
			logrus.Warnf("skipping slot record: %v", err)
			continue
		}
		slots = append(slots, slot)
	}
	s.mu.Lock()
	s.slots = slots
	s.refreshStatsLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) loadVehicleLogs(ctx context.Context) error {
	role, userID := s.scope()

	var records []client.VehicleLogRecord
	var err error
	if scopedToUser(role) {
		records, err = s.backend.VehicleLogsByUser(ctx, userID)
	} else {
		records, err = s.backend.AllVehicleLogs(ctx)
	}
	if err != nil {
		return fmt.Errorf("loading vehicle logs: %w", err)
	}

	now := s.now()
	logs := make([]entities.VehicleLog, 0, len(records))
	for _, r := range records {
		log, err := normalize.VehicleLog(r, now)
		if err != nil {
			logrus.Warnf("skipping vehicle log record: %v", err)
			continue
		}
		logs = append(logs, log)
	}
	s.mu.Lock()
	s.vehicleLogs = logs
	s.refreshStatsLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) loadReservations(ctx context.Context) error {
	role, userID := s.scope()

	var records []client.ReservationRecord
	var err error
	if scopedToUser(role) {
		records, err = s.backend.ReservationsByUser(ctx, userID)
	} else {
		records, err = s.backend.AllReservations(ctx)
	}
	if err != nil {
		return fmt.Errorf("loading reservations: %w", err)
	}

	reservations := make([]entities.Reservation, 0, len(records))
	for _, r := range records {
		reservation, err := normalize.Reservation(r)
		if err != nil {
			logrus.Warnf("skipping reservation record: %v", err)
			continue
		}
		reservations = append(reservations, reservation)
	}
	s.mu.Lock()
	s.reservations = reservations
	s.refreshStatsLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) loadInvoices(ctx context.Context) error {
	role, userID := s.scope()

	var records []client.InvoiceRecord
	var err error
	if scopedToUser(role) {
		records, err = s.backend.InvoicesByUser(ctx, userID)
	} else {
		records, err = s.backend.AllInvoices(ctx)
	}
	if err != nil {
		return fmt.Errorf("loading invoices: %w", err)
	}

	invoices := make([]entities.Invoice, 0, len(records))
	for _, r := range records {
		invoice, err := normalize.Invoice(r)
		if err != nil {
			logrus.Warnf("skipping invoice record: %v", err)
			continue
		}
		invoices = append(invoices, invoice)
	}
	s.mu.Lock()
	s.invoices = invoices
	s.refreshStatsLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) loadUsers(ctx context.Context) error {
	records, err := s.backend.AllUsers(ctx)
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	users := make([]entities.User, 0, len(records))
	for _, r := range records {
		user, err := normalize.User(r)
		if err != nil {
			logrus.Warnf("skipping user record: %v", err)
			continue
		}
		users = append(users, user)
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// Snapshot accessors. Each returns a copy so callers never share the
// store's backing slices.

func (s *Store) Slots() []entities.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Slot(nil), s.slots...)
}

func (s *Store) VehicleLogs() []entities.VehicleLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.VehicleLog(nil), s.vehicleLogs...)
}

func (s *Store) Reservations() []entities.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Reservation(nil), s.reservations...)
}

func (s *Store) Invoices() []entities.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Invoice(nil), s.invoices...)
}

func (s *Store) Users() []entities.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.User(nil), s.users...)
}

func (s *Store) Stats() entities.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Slot operations.

func (s *Store) AddSlot(ctx context.Context, location string, vehicleType entities.VehicleType) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	slot, err := s.backend.AddSlot(ctx, client.AddSlotRequest{Location: location, Type: string(vehicleType)})
	if err != nil {
		return fmt.Errorf("adding slot: %w", err)
	}
	if slot == nil {
		return fmt.Errorf("failed to add slot")
	}
	return s.loadSlots(ctx)
}

// SlotUpdate carries the changeable slot fields. A non-nil Occupied routes
// the update through the dedicated occupancy endpoint.
type SlotUpdate struct {
	Location string
	Type     entities.VehicleType
	Occupied *bool
}

func (s *Store) UpdateSlot(ctx context.Context, id int64, update SlotUpdate) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	var slot *client.SlotRecord
	var err error
	if update.Occupied != nil {
		slot, err = s.backend.UpdateSlotOccupancy(ctx, id, *update.Occupied)
	} else {
		slot, err = s.backend.UpdateSlot(ctx, id, client.UpdateSlotRequest{
			Location: update.Location,
			Type:     string(update.Type),
		})
	}
	if err != nil {
		return fmt.Errorf("updating slot %d: %w", id, err)
	}
	if slot == nil {
		return fmt.Errorf("failed to update slot %d", id)
	}
	return s.loadSlots(ctx)
}

func (s *Store) RemoveSlot(ctx context.Context, id int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.backend.DeleteSlot(ctx, id); err != nil {
		return fmt.Errorf("removing slot %d: %w", id, err)
	}
	return s.loadSlots(ctx)
}

// Vehicle log operations.

func (s *Store) AddVehicleLog(ctx context.Context, vehicleNumber string, userID, slotID int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	log, err := s.backend.VehicleEntry(ctx, client.VehicleEntryRequest{
		VehicleNumber: vehicleNumber,
		UserID:        userID,
		SlotID:        slotID,
	})
	if err != nil {
		return fmt.Errorf("logging vehicle entry: %w", err)
	}
	if log == nil {
		return fmt.Errorf("failed to log vehicle entry")
	}
	return errors.Join(s.loadVehicleLogs(ctx), s.loadSlots(ctx))
}

// CompleteVehicleLog records the exit and creates a CASH invoice keyed to the
// log. The two backend calls are sequential and deliberately non-atomic: once
// the exit is recorded the operation is a success, a failed invoice creation
// is only logged. Completed is terminal, there is no way back to active.
func (s *Store) CompleteVehicleLog(ctx context.Context, logID int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	log, err := s.backend.VehicleExit(ctx, logID)
	if err != nil {
		return fmt.Errorf("recording vehicle exit: %w", err)
	}
	if log == nil {
		return fmt.Errorf("failed to record vehicle exit")
	}
	if err := errors.Join(s.loadVehicleLogs(ctx), s.loadSlots(ctx)); err != nil {
		return err
	}

	var userID int64
	if log.UserID != nil {
		userID = *log.UserID
	}
	if err := s.addInvoice(ctx, userID, nil, log.LogID, "CASH"); err != nil {
		logrus.Warnf("vehicle log %d completed but invoice creation failed: %v", logID, err)
	}
	return nil
}

// Reservation operations.

// ReservationDraft is the input for a new booking.
type ReservationDraft struct {
	UserID        int64
	SlotID        int64
	VehicleNumber string
	StartTime     time.Time
	EndTime       time.Time
	Type          entities.VehicleType
}

// AddReservation books a slot and creates a UPI invoice keyed to the
// reservation. Like vehicle exit, the invoice call is best-effort: the
// booking stands even when invoicing fails.
func (s *Store) AddReservation(ctx context.Context, draft ReservationDraft) (entities.Reservation, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	vehicleType := draft.Type
	if vehicleType == "" {
		vehicleType = entities.FourWheeler
	}
	record, err := s.backend.CreateReservation(ctx, client.CreateReservationRequest{
		UserID:        draft.UserID,
		SlotID:        draft.SlotID,
		VehicleNumber: draft.VehicleNumber,
		StartTime:     draft.StartTime.UTC().Format(time.RFC3339),
		EndTime:       draft.EndTime.UTC().Format(time.RFC3339),
		Type:          string(vehicleType),
	})
	if err != nil {
		return entities.Reservation{}, fmt.Errorf("creating reservation: %w", err)
	}
	if record == nil {
		return entities.Reservation{}, fmt.Errorf("failed to create reservation")
	}
	if err := s.loadReservations(ctx); err != nil {
		return entities.Reservation{}, err
	}

	var userID int64
	if record.UserID != nil {
		userID = *record.UserID
	}
	if err := s.addInvoice(ctx, userID, record.ReservationID, nil, "UPI"); err != nil {
		id := int64(0)
		if record.ReservationID != nil {
			id = *record.ReservationID
		}
		logrus.Warnf("reservation %d created but invoice creation failed: %v", id, err)
	}

	reservation, err := normalize.Reservation(*record)
	if err != nil {
		return entities.Reservation{}, err
	}
	return reservation, nil
}

// ReservationUpdate carries the changeable reservation fields; zero values
// are omitted from the backend call.
type ReservationUpdate struct {
	SlotID        int64
	VehicleNumber string
	StartTime     *time.Time
	EndTime       *time.Time
	Status        entities.ReservationStatus
}

func (s *Store) UpdateReservation(ctx context.Context, id int64, update ReservationUpdate) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	req := client.UpdateReservationRequest{
		SlotID:        update.SlotID,
		VehicleNumber: update.VehicleNumber,
		Status:        strings.ToUpper(string(update.Status)),
	}
	if update.StartTime != nil {
		req.StartTime = update.StartTime.UTC().Format(time.RFC3339)
	}
	if update.EndTime != nil {
		req.EndTime = update.EndTime.UTC().Format(time.RFC3339)
	}

	record, err := s.backend.UpdateReservation(ctx, id, req)
	if err != nil {
		return fmt.Errorf("updating reservation %d: %w", id, err)
	}
	if record == nil {
		return fmt.Errorf("failed to update reservation %d", id)
	}
	return s.loadReservations(ctx)
}

// CancelReservation is a status transition on the backend, not a delete; the
// reservation remains in the collection as cancelled after the reload.
func (s *Store) CancelReservation(ctx context.Context, id int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.backend.CancelReservation(ctx, id); err != nil {
		return fmt.Errorf("cancelling reservation %d: %w", id, err)
	}
	return s.loadReservations(ctx)
}

// Invoice operations.

func (s *Store) AddInvoice(ctx context.Context, userID int64, reservationID, logID *int64, paymentMethod string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.addInvoice(ctx, userID, reservationID, logID, paymentMethod)
}

// addInvoice is the unlocked body, shared with the composite operations that
// already hold opMu.
func (s *Store) addInvoice(ctx context.Context, userID int64, reservationID, logID *int64, paymentMethod string) error {
	err := s.backend.CreateInvoice(ctx, client.CreateInvoiceRequest{
		UserID:        userID,
		ReservationID: reservationID,
		LogID:         logID,
		Timestamp:     s.now().UTC().Format(time.RFC3339),
		PaymentMethod: strings.ToUpper(paymentMethod),
	})
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}
	return s.loadInvoices(ctx)
}

func (s *Store) MarkInvoicePaid(ctx context.Context, id int64, paymentMethod string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if paymentMethod == "" {
		paymentMethod = "CASH"
	}
	if err := s.backend.PayInvoice(ctx, id, paymentMethod); err != nil {
		return fmt.Errorf("paying invoice %d: %w", id, err)
	}
	return s.loadInvoices(ctx)
}

func (s *Store) MarkInvoiceFailed(ctx context.Context, id int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.backend.CancelInvoice(ctx, id); err != nil {
		return fmt.Errorf("cancelling invoice %d: %w", id, err)
	}
	return s.loadInvoices(ctx)
}

// User operations (admin surface).

func (s *Store) AddUser(ctx context.Context, req client.RegisterUserRequest) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	req.Role = strings.ToUpper(req.Role)
	user, err := s.backend.RegisterUser(ctx, req)
	if err != nil {
		return fmt.Errorf("adding user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("failed to add user")
	}
	return s.loadUsers(ctx)
}

func (s *Store) UpdateUser(ctx context.Context, id int64, req client.UpdateUserRequest) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	req.Role = strings.ToUpper(req.Role)
	user, err := s.backend.UpdateUser(ctx, id, req)
	if err != nil {
		return fmt.Errorf("updating user %d: %w", id, err)
	}
	if user == nil {
		return fmt.Errorf("failed to update user %d", id)
	}
	return s.loadUsers(ctx)
}

func (s *Store) RemoveUser(ctx context.Context, id int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.backend.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("removing user %d: %w", id, err)
	}
	return s.loadUsers(ctx)
}

// AvailableSlots queries the backend directly rather than filtering the
// cached collection, optionally restricted to a vehicle type. It always
// returns a list; backend failures are logged and yield an empty one.
func (s *Store) AvailableSlots(ctx context.Context, vehicleType entities.VehicleType) []entities.Slot {
	var records []client.SlotRecord
	var err error
	if vehicleType != "" {
		records, err = s.backend.AvailableSlotsByType(ctx, string(vehicleType))
	} else {
		records, err = s.backend.AllSlots(ctx)
	}
	if err != nil {
		logrus.Warnf("available slots query failed: %v", err)
		return []entities.Slot{}
	}

	slots := make([]entities.Slot, 0, len(records))
	for _, r := range records {
		slot, err := normalize.Slot(r)
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// ComputeStats is the pure reducer behind the derived statistics.
func ComputeStats(slots []entities.Slot, reservations []entities.Reservation, invoices []entities.Invoice) entities.Stats {
	stats := entities.Stats{TotalSlots: len(slots)}
	for _, slot := range slots {
		if slot.Occupied {
			stats.OccupiedSlots++
		}
	}
	stats.AvailableSlots = stats.TotalSlots - stats.OccupiedSlots

	for _, invoice := range invoices {
		if invoice.Status == entities.InvoicePaid {
			stats.Revenue += invoice.Amount
		}
	}
	for _, reservation := range reservations {
		if reservation.Status == entities.ReservationActive || reservation.Status == entities.ReservationPending {
			stats.ActiveReservations++
		}
	}
	return stats
}

func (s *Store) refreshStatsLocked() {
	s.stats = ComputeStats(s.slots, s.reservations, s.invoices)
}

func (s *Store) scope() (entities.Role, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role, s.userID
}
