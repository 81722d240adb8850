package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "parkdeck/internal/errors"
)

type stubTokens struct {
	token   string
	cleared bool
}

func (s *stubTokens) Token() string { return s.token }

func (s *stubTokens) Clear() { s.cleared = true }

func TestDoSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(map[string]any{"slots": []SlotRecord{}})
	}))
	defer server.Close()

	c := New(server.URL, &stubTokens{token: "tok-123"})
	_, err := c.AllSlots(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestDoClearsTokenOn401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &stubTokens{token: "stale"}
	c := New(server.URL, tokens)
	_, err := c.Profile(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	assert.True(t, tokens.cleared)
}

func TestDoExtractsErrorMessage(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "message field", body: `{"message":"slot already occupied"}`, expected: "slot already occupied"},
		{name: "error field", body: `{"error":"slot not found"}`, expected: "slot not found"},
		{name: "unparseable body", body: `<html>oops</html>`, expected: "backend returned 409 Conflict"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := New(server.URL, nil)
			err := c.DeleteSlot(context.Background(), 1)

			require.Error(t, err)
			var httpErr *apperrors.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusConflict, httpErr.Code)
			assert.Equal(t, tc.expected, httpErr.Message)
		})
	}
}

func TestBillingSuccessFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "invoice already settled"})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	err := c.PayInvoice(context.Background(), 7, "cash")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice already settled")
}

func TestAvailableSlotsByTypeLowercasesPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"slots": []SlotRecord{}})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	_, err := c.AvailableSlotsByType(context.Background(), "2W")

	require.NoError(t, err)
	assert.Equal(t, "/api/slots/available/type/2w", gotPath)
}
