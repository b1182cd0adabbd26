package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketConfirmed TicketStatus = "confirmed"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketRefunded  TicketStatus = "refunded"
	TicketDeleted   TicketStatus = "deleted"
)

const TicketNumberPrefix = "TKT"

type Ticket struct {
	ID              string
	EventID         string
	UserID          string
	TicketNumber    string
	QRCodePayload   string
	EventName       string
	VenueName       string
	VenueID         string
	Status          TicketStatus
	PaymentIntentID string
	PaymentMethod   string
	CustomerEmail   string
	TotalPrice      decimal.Decimal
	PurchaseDate    time.Time
	UsedAt          *time.Time
	ScannedBy       string
	Version         int
}

// IsActive reports whether the ticket counts toward the one-per-user-per-event
// limit.
func (t *Ticket) IsActive() bool {
	return t.Status == TicketConfirmed || t.Status == TicketUsed
}

func (t *Ticket) CanRedeem() bool {
	return t.Status == TicketConfirmed
}
