package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

const ticketColumns = `id, event_id, user_id, ticket_number, qr_code_payload, event_name, venue_name, venue_id,
	status, payment_intent_id, payment_method, customer_email, total_price, purchase_date, used_at, scanned_by, version`

func (q *queries) HasActiveTicket(ctx context.Context, userID, eventID string) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM tickets
		WHERE user_id = $1 AND event_id = $2 AND status IN ('confirmed', 'used')
	)
	`

	var exists bool
	if err := q.db.QueryRowContext(ctx, query, userID, eventID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (q *queries) CreateTicket(ctx context.Context, t *domain.Ticket) error {
	query := `
	INSERT INTO tickets (` + ticketColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := q.db.ExecContext(ctx, query,
		t.ID,
		t.EventID,
		t.UserID,
		t.TicketNumber,
		t.QRCodePayload,
		t.EventName,
		t.VenueName,
		t.VenueID,
		t.Status,
		t.PaymentIntentID,
		t.PaymentMethod,
		t.CustomerEmail,
		t.TotalPrice,
		t.PurchaseDate,
		t.UsedAt,
		t.ScannedBy,
		t.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", translate(err))
	}

	return nil
}

func (q *queries) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return q.getTicketWhere(ctx, "id = $1", ticketID)
}

func (q *queries) GetTicketByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	return q.getTicketWhere(ctx, "ticket_number = $1", ticketNumber)
}

func (q *queries) GetTicketByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Ticket, error) {
	return q.getTicketWhere(ctx, "payment_intent_id = $1 ORDER BY purchase_date DESC LIMIT 1", paymentIntentID)
}

func (q *queries) getTicketWhere(ctx context.Context, where string, arg any) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ` + where

	var t domain.Ticket
	var usedAt sql.NullTime

	err := q.db.QueryRowContext(ctx, query, arg).Scan(
		&t.ID,
		&t.EventID,
		&t.UserID,
		&t.TicketNumber,
		&t.QRCodePayload,
		&t.EventName,
		&t.VenueName,
		&t.VenueID,
		&t.Status,
		&t.PaymentIntentID,
		&t.PaymentMethod,
		&t.CustomerEmail,
		&t.TotalPrice,
		&t.PurchaseDate,
		&usedAt,
		&t.ScannedBy,
		&t.Version,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}

		return nil, err
	}

	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}

	return &t, nil
}

func (q *queries) MarkTicketUsed(ctx context.Context, ticketID, scannedBy string, usedAt time.Time, expectedVersion int) error {
	query := `
	UPDATE tickets
	SET status = $1,
		used_at = $2,
		scanned_by = $3,
		version = version + 1
	WHERE id = $4 AND version = $5 AND status = $6
	`

	result, err := q.db.ExecContext(ctx, query, domain.TicketUsed, usedAt, scannedBy, ticketID, expectedVersion, domain.TicketConfirmed)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}
