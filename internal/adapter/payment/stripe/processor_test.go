package stripe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	processor "github.com/srgjo27/ticketflow/internal/adapter/payment/stripe"
	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

func newTestProcessor(t *testing.T, handler http.HandlerFunc) *processor.Processor {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		HTTPClient:        server.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return processor.NewProcessorWithBackends("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestCreateIntent(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "2500", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
		assert.Equal(t, "user-1", r.PostForm.Get("metadata[userId]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_1","object":"payment_intent","client_secret":"pi_1_secret","status":"requires_payment_method","amount":2500,"currency":"usd","metadata":{"userId":"user-1"}}`))
	})

	intent, err := p.CreateIntent(context.Background(), ports.IntentParams{
		Amount:     2500,
		Currency:   "usd",
		CustomerID: "cus_1",
		Metadata:   map[string]string{domain.MetaUserID: "user-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, "requires_payment_method", intent.Status)
	assert.Equal(t, "user-1", intent.Metadata[domain.MetaUserID])
}

func TestRetrieveIntent(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_1", r.URL.Path)
		assert.Equal(t, "payment_method", r.URL.Query().Get("expand[0]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_1","object":"payment_intent","status":"succeeded","amount":2500,"currency":"usd","metadata":{"userId":"user-1","eventId":"evt-1"},"payment_method":{"id":"pm_1","object":"payment_method","type":"card"}}`))
	})

	intent, err := p.RetrieveIntent(context.Background(), "pi_1")

	require.NoError(t, err)
	assert.Equal(t, domain.IntentSucceeded, intent.Status)
	assert.Equal(t, "card", intent.PaymentMethod)
	assert.Equal(t, "evt-1", intent.Metadata[domain.MetaEventID])
}

func TestCreateRefund(t *testing.T) {
	tests := []struct {
		reason domain.RefundReason
		want   string
	}{
		{reason: domain.RefundDuplicate, want: "duplicate"},
		{reason: domain.RefundRequestedByCustomer, want: "requested_by_customer"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "/v1/refunds", r.URL.Path)
				assert.Equal(t, "pi_1", r.PostForm.Get("payment_intent"))
				assert.Equal(t, tt.want, r.PostForm.Get("reason"))
				assert.Equal(t, "refund-pi_1", r.Header.Get("Idempotency-Key"))

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"re_1","object":"refund","status":"succeeded"}`))
			})

			id, err := p.CreateRefund(context.Background(), "pi_1", tt.reason)

			require.NoError(t, err)
			assert.Equal(t, "re_1", id)
		})
	}
}

func TestCreateCustomer_Failure(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "customer-user-1", r.Header.Get("Idempotency-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid email address"}}`))
	})

	_, err := p.CreateCustomer(context.Background(), ports.CustomerParams{UserID: "user-1", Email: "bad"})

	assert.Error(t, err)
}
