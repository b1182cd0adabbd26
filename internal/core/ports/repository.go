package ports

import (
	"context"
	"errors"
	"time"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("optimistic lock failed: record was modified by another transaction")
)

// Queries is the document-store surface shared by plain reads and
// transactions. Implementations return ErrNotFound for missing records and
// ErrConflict when a version-guarded write loses a race.
type Queries interface {
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	UpdateEventTicketsSold(ctx context.Context, eventID string, ticketsSold int, expectedVersion int) error

	HasActiveTicket(ctx context.Context, userID, eventID string) (bool, error)
	CreateTicket(ctx context.Context, ticket *domain.Ticket) error
	GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error)
	GetTicketByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	GetTicketByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Ticket, error)
	MarkTicketUsed(ctx context.Context, ticketID, scannedBy string, usedAt time.Time, expectedVersion int) error

	CreatePendingPayment(ctx context.Context, p *domain.PendingPayment) error
	GetPendingPayment(ctx context.Context, paymentIntentID string) (*domain.PendingPayment, error)
	// ClaimPendingPayment moves a pending record to completed. It returns
	// ErrConflict when the record is no longer pending.
	ClaimPendingPayment(ctx context.Context, paymentIntentID string) error
	DeletePendingPayment(ctx context.Context, paymentIntentID string) error

	CreateFailedPurchase(ctx context.Context, fp *domain.FailedPurchase) error
	UpdateFailedPurchase(ctx context.Context, id string, status domain.FailedPurchaseStatus, refundID string) error
	HasFailedPurchase(ctx context.Context, paymentIntentID string) (bool, error)
}

// Store runs fn inside a single atomic transaction. A conflicting commit is
// retried by the store; fn must therefore be free of external side effects.
type Store interface {
	Queries
	WithinTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error
}

type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*domain.UserProfile, error)
	SetPaymentCustomerID(ctx context.Context, uid, customerID string) error
}

type ScanLogRepository interface {
	AppendScanLog(ctx context.Context, entry *domain.ScanLog) error
	ListScanLogs(ctx context.Context, filter domain.ScanFilter) ([]domain.ScanLog, error)
}
