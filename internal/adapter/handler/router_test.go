package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticketflow/internal/adapter/auth"
	"github.com/srgjo27/ticketflow/internal/adapter/handler"
	"github.com/srgjo27/ticketflow/internal/adapter/repository/memory"
	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports/mocks"
	"github.com/srgjo27/ticketflow/internal/core/services"
)

const jwtSecret = "handler-test-secret"

type testServer struct {
	t         *testing.T
	store     *memory.Store
	processor *mocks.PaymentProcessor
	handler   http.Handler
}

func newTestServer(t *testing.T, scanBurst int) *testServer {
	t.Helper()

	store := memory.NewStore()
	store.SeedEvent(domain.Event{
		ID:         "evt-1",
		Name:       "Winter Gala",
		VenueID:    "venue-1",
		Price:      decimal.NewFromInt(30),
		MaxTickets: 50,
		StartTime:  time.Now(),
	})
	store.SeedUser(domain.UserProfile{UID: "buyer", Email: "buyer@example.com", Role: domain.RoleUser, Active: true, PaymentCustomerID: "cus_1"})
	store.SeedUser(domain.UserProfile{UID: "door", Role: domain.RoleScanner, VenueID: "venue-1", Active: true})

	processor := mocks.NewPaymentProcessor(t)
	resolver := auth.NewResolver(jwtSecret, "", store)
	signer := services.NewTicketSigner("hash-secret")
	validator := services.NewInventoryValidator(store, nil)

	svc := handler.Services{
		Intents:   services.NewPaymentIntentService(store, store, processor, validator, "usd"),
		Purchases: services.NewPurchaseService(store, processor, validator, services.NewTicketIssuer(signer), nil, nil),
		Scans:     services.NewScanService(store, store, resolver, signer, nil, time.UTC),
		Tickets:   services.NewTicketService(store),
	}

	return &testServer{
		t:         t,
		store:     store,
		processor: processor,
		handler: handler.NewRouter(svc, handler.RouterConfig{
			Identity:          resolver,
			ScanRatePerSecond: 0.001,
			ScanBurst:         scanBurst,
		}),
	}
}

func (s *testServer) do(method, path, uid string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if uid != "" {
		token, err := auth.SignToken(jwtSecret, "", uid, "", domain.RoleUser, "", time.Minute)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func (s *testServer) purchase() string {
	s.t.Helper()

	s.processor.On("CreateIntent", mock.Anything, mock.Anything).
		Return(&domain.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()
	s.processor.On("RetrieveIntent", mock.Anything, "pi_1").Return(&domain.PaymentIntent{
		ID:       "pi_1",
		Status:   domain.IntentSucceeded,
		Metadata: map[string]string{domain.MetaUserID: "buyer", domain.MetaEventID: "evt-1"},
	}, nil).Once()

	rec := s.do(http.MethodPost, "/api/payments/intents", "buyer", map[string]string{"eventId": "evt-1"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(s.t, "pi_1_secret", decode(s.t, rec)["clientSecret"])

	rec = s.do(http.MethodPost, "/api/purchases/confirm", "buyer", map[string]string{"paymentIntentId": "pi_1"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(s.t, rec)
	assert.Equal(s.t, true, body["success"])

	return body["ticketId"].(string)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.do(http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.do(http.MethodPost, "/api/payments/intents", "", map[string]string{"eventId": "evt-1"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode(t, rec)["reason"])

	req := httptest.NewRequest(http.MethodGet, "/api/scans", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPurchaseFlow(t *testing.T) {
	s := newTestServer(t, 5)

	s.purchase()

	rec := s.do(http.MethodPost, "/api/purchases/confirm", "buyer", map[string]string{"paymentIntentId": "pi_1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_PROCESSED", decode(t, rec)["reason"])

	rec = s.do(http.MethodPost, "/api/payments/intents", "buyer", map[string]string{"eventId": "evt-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_TICKET", decode(t, rec)["reason"])
}

func TestConfirm_BadBody(t *testing.T) {
	s := newTestServer(t, 5)

	req := httptest.NewRequest(http.MethodPost, "/api/purchases/confirm", bytes.NewBufferString("{"))
	token, err := auth.SignToken(jwtSecret, "", "buyer", "", domain.RoleUser, "", time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", decode(t, rec)["reason"])
}

func TestScanFlow(t *testing.T) {
	s := newTestServer(t, 5)
	ticketID := s.purchase()

	ticket, err := s.store.GetTicket(context.Background(), ticketID)
	require.NoError(t, err)

	rec := s.do(http.MethodPost, "/api/scans", "door", map[string]string{"qrCodeData": ticket.QRCodePayload})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", decode(t, rec)["result"])

	rec = s.do(http.MethodPost, "/api/scans", "door", map[string]string{"ticketNumber": ticket.TicketNumber})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "already_used", body["result"])
	assert.Equal(t, "door", body["scannedBy"])

	rec = s.do(http.MethodPost, "/api/scans", "buyer", map[string]string{"ticketId": ticketID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/scans", "door", map[string]string{"qrCodeData": "garbage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FORMAT", decode(t, rec)["reason"])

	rec = s.do(http.MethodGet, "/api/scans?result=success", "door", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	scans := decode(t, rec)["scans"].([]any)
	require.Len(t, scans, 1)
	assert.Equal(t, ticketID, scans[0].(map[string]any)["ticketId"])

	rec = s.do(http.MethodGet, "/api/scans?limit=abc", "door", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/scans?since=yesterday", "door", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScan_RateLimited(t *testing.T) {
	s := newTestServer(t, 1)

	rec := s.do(http.MethodPost, "/api/scans", "door", map[string]string{"qrCodeData": "garbage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/scans", "door", map[string]string{"qrCodeData": "garbage"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, rec)["reason"])
}

func TestTicketEndpoints(t *testing.T) {
	s := newTestServer(t, 5)
	ticketID := s.purchase()

	rec := s.do(http.MethodGet, "/api/tickets/"+ticketID, "buyer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "confirmed", body["status"])
	assert.Equal(t, "30", body["totalPrice"])

	rec = s.do(http.MethodGet, "/api/tickets/"+ticketID+"/qr.png", "buyer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = s.do(http.MethodGet, "/api/tickets/"+ticketID, "stranger", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/tickets/missing", "buyer", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
