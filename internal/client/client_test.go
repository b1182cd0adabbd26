package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticketflow/internal/client"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestConfirmPurchase_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/purchases/confirm", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "internal", "reason": "INTERNAL", "error": "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "ticketId": "t-1", "ticketNumber": "TKT12345678901"})
	}))
	defer srv.Close()

	c := client.New(srv.URL, "tok", client.WithConfirmRetry(3, time.Millisecond))

	p, err := c.ConfirmPurchase(context.Background(), "pi_1")

	require.NoError(t, err)
	assert.True(t, p.Success)
	assert.Equal(t, "t-1", p.TicketID)
	assert.EqualValues(t, 3, calls.Load())
}

func TestConfirmPurchase_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := client.New(srv.URL, "tok", client.WithConfirmRetry(3, time.Millisecond))

	_, err := c.ConfirmPurchase(context.Background(), "pi_1")

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.EqualValues(t, 3, calls.Load())
}

func TestConfirmPurchase_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusConflict, map[string]string{"code": "already-exists", "reason": "ALREADY_PROCESSED", "error": "this payment has already been processed"})
	}))
	defer srv.Close()

	c := client.New(srv.URL, "tok", client.WithConfirmRetry(3, time.Millisecond))

	_, err := c.ConfirmPurchase(context.Background(), "pi_1")

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ALREADY_PROCESSED", apiErr.Reason)
	assert.Equal(t, "this payment has already been processed", apiErr.Message)
	assert.EqualValues(t, 1, calls.Load())
}

func TestConfirmPurchase_RetriesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := client.New(url, "tok", client.WithConfirmRetry(2, time.Millisecond))

	_, err := c.ConfirmPurchase(context.Background(), "pi_1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestCreatePaymentIntent_NotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "evt-1", body["eventId"])
		writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "internal", "reason": "PAYMENT_SETUP_FAILED", "error": "failed to set up payment"})
	}))
	defer srv.Close()

	c := client.New(srv.URL, "tok", client.WithConfirmRetry(3, time.Millisecond))

	_, err := c.CreatePaymentIntent(context.Background(), "evt-1")

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "PAYMENT_SETUP_FAILED", apiErr.Reason)
	assert.EqualValues(t, 1, calls.Load())
}

func TestScanTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/scans", r.URL.Path)

		var in client.ScanInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "TKT12345678901", in.TicketNumber)
		assert.Empty(t, in.QRCodeData)

		writeJSON(w, http.StatusOK, map[string]any{"result": "success", "ticketId": "t-1", "scannedBy": "door"})
	}))
	defer srv.Close()

	res, err := client.New(srv.URL+"/", "tok").ScanTicket(context.Background(), client.ScanInput{TicketNumber: "TKT12345678901"})

	require.NoError(t, err)
	assert.Equal(t, "success", res.Result)
	assert.Equal(t, "door", res.ScannedBy)
}
