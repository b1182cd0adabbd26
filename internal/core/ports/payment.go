package ports

import (
	"context"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

type CustomerParams struct {
	UserID string
	Email  string
}

type IntentParams struct {
	Amount         int64
	Currency       string
	CustomerID     string
	Metadata       map[string]string
	IdempotencyKey string
}

// PaymentProcessor is the external payment service. Every call is a fallible
// network round trip and must never run inside a store transaction.
type PaymentProcessor interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)
	CreateIntent(ctx context.Context, params IntentParams) (*domain.PaymentIntent, error)
	RetrieveIntent(ctx context.Context, paymentIntentID string) (*domain.PaymentIntent, error)
	CreateRefund(ctx context.Context, paymentIntentID string, reason domain.RefundReason) (string, error)
}
