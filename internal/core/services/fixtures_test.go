package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticketflow/internal/adapter/repository/memory"
	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports/mocks"
	"github.com/srgjo27/ticketflow/internal/core/services"
)

const (
	testHashSecret = "test-hash-secret"
	testEventID    = "evt-gala"
	testVenueID    = "venue-1"
)

type purchaseFixture struct {
	store     *memory.Store
	processor *mocks.PaymentProcessor
	service   *services.PurchaseService
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()

	store := memory.NewStore(memory.WithMaxAttempts(50))
	processor := mocks.NewPaymentProcessor(t)
	validator := services.NewInventoryValidator(store, nil)
	issuer := services.NewTicketIssuer(services.NewTicketSigner(testHashSecret))

	return &purchaseFixture{
		store:     store,
		processor: processor,
		service:   services.NewPurchaseService(store, processor, validator, issuer, nil, nil),
	}
}

func seedEvent(store *memory.Store, maxTickets, sold int, start time.Time) {
	store.SeedEvent(domain.Event{
		ID:          testEventID,
		Name:        "Winter Gala",
		Venue:       "Town Hall",
		VenueID:     testVenueID,
		Price:       decimal.NewFromInt(25),
		MaxTickets:  maxTickets,
		TicketsSold: sold,
		StartTime:   start,
		Timezone:    "UTC",
	})
}

func seedPending(t *testing.T, store *memory.Store, intentID, userID string) {
	t.Helper()

	err := store.CreatePendingPayment(context.Background(), &domain.PendingPayment{
		ID:        intentID,
		UserID:    userID,
		EventID:   testEventID,
		Amount:    2500,
		Currency:  "usd",
		Status:    domain.PendingAwaiting,
		EventName: "Winter Gala",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func intentFor(intentID, userID, status string) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ID:       intentID,
		Status:   status,
		Amount:   2500,
		Currency: "usd",
		Metadata: map[string]string{
			domain.MetaEventID: testEventID,
			domain.MetaUserID:  userID,
		},
		PaymentMethod: "pm_card_visa",
	}
}
