package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "parkdeck/internal/errors"
)

const requestTimeout = 15 * time.Second

// TokenSource supplies the bearer token for backend calls. Clear is invoked
// when the backend answers 401 so a stale credential never outlives the
// session that minted it.
type TokenSource interface {
	Token() string
	Clear()
}

// Client is the typed HTTP client for the parking backend. It owns no state
// beyond the transport; all normalization happens in the caller.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		tokens:  tokens,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		logrus.Warnf("backend rejected credential on %s %s, clearing session", method, path)
		if c.tokens != nil {
			c.tokens.Clear()
		}
		return apperrors.ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewHTTPError(resp.StatusCode, errorMessage(resp.StatusCode, data))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response %s %s: %w", method, path, err)
		}
	}
	return nil
}

// errorMessage extracts the backend's human-readable reason, falling back to
// the HTTP status text.
func errorMessage(status int, data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("backend returned %d %s", status, http.StatusText(status))
}

// User management.

func (c *Client) RegisterUser(ctx context.Context, req RegisterUserRequest) (*UserRecord, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/user/register", req, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/user/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Profile(ctx context.Context) (*UserRecord, error) {
	var user UserRecord
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) AllUsers(ctx context.Context) ([]UserRecord, error) {
	var env usersEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/user/all", nil, &env); err != nil {
		return nil, err
	}
	return env.Users, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*UserRecord, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/user/%d", id), req, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/user/%d", id), nil, nil)
}

// Slot management. The backend exposes slot listing through its availability
// endpoint; occupancy updates use a dedicated path.

func (c *Client) AllSlots(ctx context.Context) ([]SlotRecord, error) {
	var env slotsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/slots/available", nil, &env); err != nil {
		return nil, err
	}
	return env.Slots, nil
}

func (c *Client) AvailableSlotsByType(ctx context.Context, vehicleType string) ([]SlotRecord, error) {
	var env slotsEnvelope
	path := "/api/slots/available/type/" + strings.ToLower(vehicleType)
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Slots, nil
}

func (c *Client) AddSlot(ctx context.Context, req AddSlotRequest) (*SlotRecord, error) {
	var env slotEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/slots", req, &env); err != nil {
		return nil, err
	}
	return env.Slot, nil
}

func (c *Client) UpdateSlot(ctx context.Context, id int64, req UpdateSlotRequest) (*SlotRecord, error) {
	var env slotEnvelope
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/slots/%d", id), req, &env); err != nil {
		return nil, err
	}
	return env.Slot, nil
}

func (c *Client) UpdateSlotOccupancy(ctx context.Context, id int64, occupied bool) (*SlotRecord, error) {
	var env slotEnvelope
	body := map[string]bool{"occupied": occupied}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/slots/slot/%d", id), body, &env); err != nil {
		return nil, err
	}
	return env.Slot, nil
}

func (c *Client) DeleteSlot(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/slots/%d", id), nil, nil)
}

// Vehicle logs.

func (c *Client) VehicleEntry(ctx context.Context, req VehicleEntryRequest) (*VehicleLogRecord, error) {
	var env logEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/vehicle-log/entry", req, &env); err != nil {
		return nil, err
	}
	return env.Log, nil
}

func (c *Client) VehicleExit(ctx context.Context, logID int64) (*VehicleLogRecord, error) {
	var env logEnvelope
	body := map[string]int64{"logId": logID}
	if err := c.do(ctx, http.MethodPost, "/api/vehicle-log/exit", body, &env); err != nil {
		return nil, err
	}
	return env.Log, nil
}

func (c *Client) AllVehicleLogs(ctx context.Context) ([]VehicleLogRecord, error) {
	var env logsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/vehicle-log", nil, &env); err != nil {
		return nil, err
	}
	return env.Logs, nil
}

func (c *Client) VehicleLogsByUser(ctx context.Context, userID int64) ([]VehicleLogRecord, error) {
	var logs []VehicleLogRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/vehicle-log/user/%d", userID), nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Reservations.

func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) (*ReservationRecord, error) {
	var env reservationEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/reservations", req, &env); err != nil {
		return nil, err
	}
	return env.Reservation, nil
}

func (c *Client) AllReservations(ctx context.Context) ([]ReservationRecord, error) {
	var reservations []ReservationRecord
	if err := c.do(ctx, http.MethodGet, "/api/reservations", nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (c *Client) ReservationsByUser(ctx context.Context, userID int64) ([]ReservationRecord, error) {
	var reservations []ReservationRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/reservations/user/%d", userID), nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (c *Client) UpdateReservation(ctx context.Context, id int64, req UpdateReservationRequest) (*ReservationRecord, error) {
	var env reservationEnvelope
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/reservations/%d", id), req, &env); err != nil {
		return nil, err
	}
	return env.Reservation, nil
}

func (c *Client) CancelReservation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/reservations/%d", id), nil, nil)
}

// Billing.

func (c *Client) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) error {
	var env billingStatusEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/billing", req, &env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("invoice creation rejected: %s", env.Message)
	}
	return nil
}

func (c *Client) AllInvoices(ctx context.Context) ([]InvoiceRecord, error) {
	var env billingListEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/billing", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("invoice listing rejected by backend")
	}
	return env.Data, nil
}

func (c *Client) InvoicesByUser(ctx context.Context, userID int64) ([]InvoiceRecord, error) {
	var env billingListEnvelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/billing/user/%d", userID), nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("invoice listing rejected by backend")
	}
	return env.Data, nil
}

func (c *Client) PayInvoice(ctx context.Context, id int64, paymentMethod string) error {
	var env billingStatusEnvelope
	body := map[string]string{"paymentMethod": strings.ToUpper(paymentMethod)}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/billing/%d/pay", id), body, &env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("invoice payment rejected: %s", env.Message)
	}
	return nil
}

func (c *Client) CancelInvoice(ctx context.Context, id int64) error {
	var env billingStatusEnvelope
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/billing/%d/cancel", id), nil, &env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("invoice cancellation rejected: %s", env.Message)
	}
	return nil
}
