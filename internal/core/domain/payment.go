package domain

import "time"

type PendingStatus string

const (
	PendingAwaiting  PendingStatus = "pending"
	PendingCompleted PendingStatus = "completed"
)

// PendingPayment is keyed by the processor's payment intent id. Its deletion
// marks a finished reconciliation.
type PendingPayment struct {
	ID            string
	UserID        string
	EventID       string
	Amount        int64
	Currency      string
	Status        PendingStatus
	EventName     string
	CustomerEmail string
	CreatedAt     time.Time
}

type FailedPurchaseStatus string

const (
	FailedRefundInitiated FailedPurchaseStatus = "refund_initiated"
	FailedRefunded        FailedPurchaseStatus = "refunded"
	FailedRefundFailed    FailedPurchaseStatus = "refund_failed"
	FailedError           FailedPurchaseStatus = "error"
)

// FailedPurchase is an append-only audit record written when a payment
// succeeded but no ticket could be issued for it.
type FailedPurchase struct {
	ID              string
	UserID          string
	EventID         string
	PaymentIntentID string
	Amount          int64
	Currency        string
	Reason          string
	Status          FailedPurchaseStatus
	RefundID        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const IntentSucceeded = "succeeded"

// PaymentIntent is the processor's view of a payment.
type PaymentIntent struct {
	ID            string
	ClientSecret  string
	Status        string
	Amount        int64
	Currency      string
	Metadata      map[string]string
	PaymentMethod string
}

type RefundReason string

const (
	RefundDuplicate           RefundReason = "duplicate"
	RefundRequestedByCustomer RefundReason = "requested_by_customer"
)

const (
	MetaEventID   = "eventId"
	MetaUserID    = "userId"
	MetaEventName = "eventName"
)
