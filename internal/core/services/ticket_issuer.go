package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

type IssueRequest struct {
	Event           *domain.Event
	UserID          string
	PaymentIntentID string
	PaymentMethod   string
	CustomerEmail   string
}

type TicketIssuer struct {
	signer  *TicketSigner
	now     func() time.Time
	marshal func(v any) ([]byte, error)
}

func NewTicketIssuer(signer *TicketSigner) *TicketIssuer {
	return &TicketIssuer{
		signer:  signer,
		now:     time.Now,
		marshal: json.Marshal,
	}
}

// Issue writes a confirmed ticket and bumps the event's sold counter from the
// snapshot in req.Event. Both writes go through q, so they commit together
// when q is a transaction.
func (i *TicketIssuer) Issue(ctx context.Context, q ports.Queries, req IssueRequest) (*domain.Ticket, error) {
	now := i.now().UTC()
	ticketID := uuid.NewString()
	ticketNumber := GenerateTicketNumber(now)

	ticket := &domain.Ticket{
		ID:              ticketID,
		EventID:         req.Event.ID,
		UserID:          req.UserID,
		TicketNumber:    ticketNumber,
		QRCodePayload:   i.BuildPayload(ticketID, req.Event.ID, req.UserID, ticketNumber, now),
		EventName:       req.Event.Name,
		VenueName:       req.Event.Venue,
		VenueID:         req.Event.VenueID,
		Status:          domain.TicketConfirmed,
		PaymentIntentID: req.PaymentIntentID,
		PaymentMethod:   req.PaymentMethod,
		CustomerEmail:   req.CustomerEmail,
		TotalPrice:      req.Event.Price,
		PurchaseDate:    now,
	}

	if err := q.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	if err := q.UpdateEventTicketsSold(ctx, req.Event.ID, req.Event.TicketsSold+1, req.Event.Version); err != nil {
		return nil, fmt.Errorf("failed to update tickets sold: %w", err)
	}

	return ticket, nil
}

// BuildPayload renders the signed JSON envelope, or the colon-delimited form
// if the envelope cannot be serialised.
func (i *TicketIssuer) BuildPayload(ticketID, eventID, userID, ticketNumber string, at time.Time) string {
	p := domain.TicketPayload{
		Type:         domain.PayloadType,
		TicketID:     ticketID,
		EventID:      eventID,
		UserID:       userID,
		TicketNumber: ticketNumber,
		Timestamp:    at.UnixMilli(),
		Version:      domain.PayloadVersion,
		Hash:         i.signer.Hash(ticketID, eventID, userID),
	}

	raw, err := i.marshal(p)
	if err != nil {
		log.Warn().Err(err).Str("ticket_id", ticketID).Msg("falling back to legacy ticket payload")
		return p.Legacy()
	}

	return string(raw)
}

// GenerateTicketNumber returns TKT followed by 11 digits: the low 8 digits of
// the millisecond clock and 3 random digits. Uniqueness is not re-checked
// before the write.
func GenerateTicketNumber(now time.Time) string {
	var suffix int64
	if n, err := rand.Int(rand.Reader, big.NewInt(1000)); err == nil {
		suffix = n.Int64()
	} else {
		suffix = now.UnixNano() % 1000
	}

	return fmt.Sprintf("%s%08d%03d", domain.TicketNumberPrefix, now.UnixMilli()%100_000_000, suffix)
}
