package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkdeck/internal/client"
	"parkdeck/internal/entities"
)

func ptr(v int64) *int64 { return &v }

// fakeBackend is a scriptable stand-in for the parking backend. Handlers are
// keyed by "METHOD path"; unhandled requests 404. Every request path is
// recorded for scope assertions.
type fakeBackend struct {
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []string
	server   *httptest.Server
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{handlers: make(map[string]http.HandlerFunc)}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.requests = append(b.requests, key)
		handler, ok := b.handlers[key]
		b.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	return b
}

func (b *fakeBackend) on(method, path string, handler http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method+" "+path] = handler
}

func (b *fakeBackend) onJSON(method, path string, status int, body any) {
	b.on(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	})
}

func (b *fakeBackend) requested(method, path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, req := range b.requests {
		if req == method+" "+path {
			return true
		}
	}
	return false
}

func (b *fakeBackend) close() { b.server.Close() }

func newTestStore(b *fakeBackend) *Store {
	s := New(client.New(b.server.URL, nil))
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

// asAdmin sets the scope without a full load, for tests that only exercise a
// single mutation.
func asAdmin(s *Store) {
	s.mu.Lock()
	s.role = entities.RoleAdmin
	s.userID = 1
	s.mu.Unlock()
}

func seedAdminCollections(b *fakeBackend) {
	b.onJSON(http.MethodGet, "/api/slots/available", http.StatusOK, map[string]any{
		"slots": []client.SlotRecord{
			{SlotID: ptr(1), Type: "2W", Location: "A1"},
			{SlotID: ptr(2), Type: "4W", Location: "B2", Occupied: true},
			{SlotID: ptr(3), Type: "4W", Location: "C3"},
		},
	})
	b.onJSON(http.MethodGet, "/api/vehicle-log", http.StatusOK, map[string]any{
		"logs": []client.VehicleLogRecord{
			{LogID: ptr(10), VehicleNumber: "KA01AB1234", EntryTime: "2025-06-01T10:00:00Z", SlotType: "2W", UserID: ptr(5), SlotID: ptr(2)},
		},
	})
	b.onJSON(http.MethodGet, "/api/reservations", http.StatusOK, []client.ReservationRecord{
		{ReservationID: ptr(20), UserID: ptr(5), SlotID: ptr(3), StartTime: "2025-06-01T14:00:00Z", EndTime: "2025-06-01T16:00:00Z", Status: "ACTIVE", Type: "4W"},
		{ReservationID: ptr(21), UserID: ptr(6), SlotID: ptr(1), StartTime: "2025-05-01T14:00:00Z", EndTime: "2025-05-01T15:00:00Z", Status: "CANCELLED", Type: "2W"},
	})
	b.onJSON(http.MethodGet, "/api/billing", http.StatusOK, map[string]any{
		"success": true,
		"data": []client.InvoiceRecord{
			{InvoiceID: ptr(30), UserID: ptr(5), Amount: 60, PaymentMethod: "CASH", Status: "PAID", Timestamp: "2025-06-01T11:00:00Z"},
			{InvoiceID: ptr(31), UserID: ptr(6), Amount: 30, PaymentMethod: "UPI", Status: "UNPAID", Timestamp: "2025-06-01T11:30:00Z"},
		},
	})
	b.onJSON(http.MethodGet, "/api/user/all", http.StatusOK, map[string]any{
		"users": []client.UserRecord{
			{ID: ptr(5), Name: "Asha", Email: "asha@example.com", Role: "CUSTOMER"},
			{ID: ptr(6), Name: "Ravi", Email: "ravi@example.com", Role: "STAFF"},
		},
	})
}

func TestLoadAllAdmin(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()
	seedAdminCollections(backend)

	s := newTestStore(backend)
	require.NoError(t, s.LoadAll(context.Background(), entities.RoleAdmin, 1))

	assert.Len(t, s.Slots(), 3)
	assert.Len(t, s.VehicleLogs(), 1)
	assert.Len(t, s.Reservations(), 2)
	assert.Len(t, s.Invoices(), 2)
	assert.Len(t, s.Users(), 2)

	stats := s.Stats()
	assert.Equal(t, 3, stats.TotalSlots)
	assert.Equal(t, 1, stats.OccupiedSlots)
	assert.Equal(t, 2, stats.AvailableSlots)
	assert.Equal(t, 60.0, stats.Revenue)
	assert.Equal(t, 1, stats.ActiveReservations)
}

func TestLoadAllCustomerScoping(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()

	backend.onJSON(http.MethodGet, "/api/slots/available", http.StatusOK, map[string]any{
		"slots": []client.SlotRecord{{SlotID: ptr(1), Type: "2W", Location: "A1"}},
	})
	backend.onJSON(http.MethodGet, "/api/vehicle-log/user/5", http.StatusOK, []client.VehicleLogRecord{})
	backend.onJSON(http.MethodGet, "/api/reservations/user/5", http.StatusOK, []client.ReservationRecord{})
	backend.onJSON(http.MethodGet, "/api/billing/user/5", http.StatusOK, map[string]any{"success": true, "data": []client.InvoiceRecord{}})

	s := newTestStore(backend)
	require.NoError(t, s.LoadAll(context.Background(), entities.RoleCustomer, 5))

	assert.True(t, backend.requested(http.MethodGet, "/api/vehicle-log/user/5"))
	assert.True(t, backend.requested(http.MethodGet, "/api/reservations/user/5"))
	assert.True(t, backend.requested(http.MethodGet, "/api/billing/user/5"))
	assert.False(t, backend.requested(http.MethodGet, "/api/user/all"))
	assert.False(t, backend.requested(http.MethodGet, "/api/vehicle-log"))
	assert.Empty(t, s.Users())
}

func TestLoadAllStaffSeesUnscopedButNoUsers(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()
	seedAdminCollections(backend)

	s := newTestStore(backend)
	require.NoError(t, s.LoadAll(context.Background(), entities.RoleStaff, 6))

	assert.True(t, backend.requested(http.MethodGet, "/api/vehicle-log"))
	assert.False(t, backend.requested(http.MethodGet, "/api/user/all"))
	assert.Len(t, s.Reservations(), 2)
}

func TestLoadAllPartialFailure(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()
	seedAdminCollections(backend)
	backend.onJSON(http.MethodGet, "/api/billing", http.StatusInternalServerError, map[string]string{"message": "billing service down"})

	s := newTestStore(backend)
	err := s.LoadAll(context.Background(), entities.RoleAdmin, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load data")
	assert.Contains(t, err.Error(), "billing service down")
	// Collections that did load survive the aggregate failure.
	assert.Len(t, s.Slots(), 3)
	assert.Len(t, s.Users(), 2)
	assert.Empty(t, s.Invoices())
}

func TestAddSlotReloads(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()
	backend.onJSON(http.MethodPost, "/api/slots", http.StatusCreated, map[string]any{
		"slot": client.SlotRecord{SlotID: ptr(4), Type: "4W", Location: "A4"},
	})
	backend.onJSON(http.MethodGet, "/api/slots/available", http.StatusOK, map[string]any{
		"slots": []client.SlotRecord{{SlotID: ptr(4), Type: "4W", Location: "A4"}},
	})

	s := newTestStore(backend)
	require.NoError(t, s.AddSlot(context.Background(), "A4", entities.FourWheeler))
	assert.Len(t, s.Slots(), 1)
	assert.Equal(t, int64(4), s.Slots()[0].ID)
}

func TestUpdateSlotOccupancyUsesDedicatedEndpoint(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()
	backend.onJSON(http.MethodPut, "/api/slots/slot/2", http.StatusOK, map[string]any{
		"slot": client.SlotRecord{SlotID: ptr(2), Type: "4W", Location: "B2", Occupied: true},
	})
	backend.onJSON(http.MethodGet, "/api/slots/available", http.StatusOK, map[string]any{
		"slots": []client.SlotRecord{{SlotID: ptr(2), Type: "4W", Location: "B2", Occupied: true}},
	})

	s := newTestStore(backend)
	occupied := true
	require.NoError(t, s.UpdateSlot(context.Background(), 2, SlotUpdate{Occupied: &occupied}))

	assert.True(t, backend.requested(http.MethodPut, "/api/slots/slot/2"))
	assert.False(t, backend.requested(http.MethodPut, "/api/slots/2"))
}

func TestCompleteVehicleLogSurvivesInvoiceFailure(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()
	backend.onJSON(http.MethodPost, "/api/vehicle-log/exit", http.StatusOK, map[string]any{
		"log": client.VehicleLogRecord{
			LogID: ptr(10), UserID: ptr(5), EntryTime: "2025-06-01T10:00:00Z",
			ExitTime: "2025-06-01T11:30:00Z", Duration: "1:30", SlotType: "2W",
		},
	})
	backend.onJSON(http.MethodGet, "/api/vehicle-log", http.StatusOK, map[string]any{
		"logs": []client.VehicleLogRecord{},
	})
	backend.onJSON(http.MethodGet, "/api/slots/available", http.StatusOK, map[string]any{"slots": []client.SlotRecord{}})
	backend.onJSON(http.MethodPost, "/api/billing", http.StatusInternalServerError, map[string]string{"message": "billing down"})

	s := newTestStore(backend)
	asAdmin(s)

	// The exit stands even though invoicing failed.
	assert.NoError(t, s.CompleteVehicleLog(context.Background(), 10))
	assert.True(t, backend.requested(http.MethodPost, "/api/billing"))
	assert.Empty(t, s.Invoices())
}

func TestAddReservationCreatesUPIInvoice(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()

	var invoiceReq client.CreateInvoiceRequest
	backend.onJSON(http.MethodPost, "/api/reservations", http.StatusCreated, map[string]any{
		"reservation": client.ReservationRecord{
			ReservationID: ptr(20), UserID: ptr(5), SlotID: ptr(3),
			StartTime: "2025-06-01T14:00:00Z", EndTime: "2025-06-01T16:00:00Z",
			Status: "PENDING", Type: "4W",
		},
	})
	backend.onJSON(http.MethodGet, "/api/reservations", http.StatusOK, []client.ReservationRecord{})
	backend.on(http.MethodPost, "/api/billing", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&invoiceReq)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "ok"})
	})
	backend.onJSON(http.MethodGet, "/api/billing", http.StatusOK, map[string]any{"success": true, "data": []client.InvoiceRecord{}})

	s := newTestStore(backend)
	asAdmin(s)

	reservation, err := s.AddReservation(context.Background(), ReservationDraft{
		UserID:        5,
		SlotID:        3,
		VehicleNumber: "KA01AB1234",
		StartTime:     time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC),
		Type:          entities.FourWheeler,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(20), reservation.ID)
	assert.Equal(t, entities.ReservationPending, reservation.Status)
	assert.Equal(t, 60, reservation.Amount)

	assert.Equal(t, "UPI", invoiceReq.PaymentMethod)
	require.NotNil(t, invoiceReq.ReservationID)
	assert.Equal(t, int64(20), *invoiceReq.ReservationID)
	assert.Nil(t, invoiceReq.LogID)
}

func TestCancelReservationReloads(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()
	backend.on(http.MethodDelete, "/api/reservations/20", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	backend.onJSON(http.MethodGet, "/api/reservations", http.StatusOK, []client.ReservationRecord{
		{ReservationID: ptr(20), UserID: ptr(5), StartTime: "2025-06-01T14:00:00Z", EndTime: "2025-06-01T16:00:00Z", Status: "CANCELLED", Type: "4W"},
	})

	s := newTestStore(backend)
	asAdmin(s)
	require.NoError(t, s.CancelReservation(context.Background(), 20))

	reservations := s.Reservations()
	require.Len(t, reservations, 1)
	assert.Equal(t, entities.ReservationCancelled, reservations[0].Status)
}

func TestAvailableSlotsNeverFails(t *testing.T) {
	backend := newFakeBackend()
	defer backend.close()
	// No handlers registered: every query 404s.

	s := newTestStore(backend)
	slots := s.AvailableSlots(context.Background(), entities.TwoWheeler)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
	assert.True(t, backend.requested(http.MethodGet, "/api/slots/available/type/2w"))
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(
		[]entities.Slot{{ID: 1, Occupied: true}, {ID: 2}, {ID: 3}},
		[]entities.Reservation{
			{ID: 1, Status: entities.ReservationActive},
			{ID: 2, Status: entities.ReservationPending},
			{ID: 3, Status: entities.ReservationCompleted},
			{ID: 4, Status: entities.ReservationCancelled},
		},
		[]entities.Invoice{
			{ID: 1, Amount: 60, Status: entities.InvoicePaid},
			{ID: 2, Amount: 30, Status: entities.InvoicePending},
			{ID: 3, Amount: 10, Status: entities.InvoicePaid},
		},
	)

	assert.Equal(t, entities.Stats{
		TotalSlots:         3,
		OccupiedSlots:      1,
		AvailableSlots:     2,
		Revenue:            70,
		ActiveReservations: 2,
	}, stats)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, entities.Stats{}, ComputeStats(nil, nil, nil))
}
