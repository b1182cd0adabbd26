package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

func (q *queries) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `
	SELECT id, name, venue, venue_id, price, max_tickets, tickets_sold, start_time, timezone, version
	FROM events
	WHERE id = $1
	`

	var e domain.Event
	var price decimal.Decimal

	err := q.db.QueryRowContext(ctx, query, eventID).Scan(
		&e.ID,
		&e.Name,
		&e.Venue,
		&e.VenueID,
		&price,
		&e.MaxTickets,
		&e.TicketsSold,
		&e.StartTime,
		&e.Timezone,
		&e.Version,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}

		return nil, err
	}

	e.Price = price

	return &e, nil
}

func (q *queries) UpdateEventTicketsSold(ctx context.Context, eventID string, ticketsSold int, expectedVersion int) error {
	query := `
	UPDATE events
	SET tickets_sold = $1,
		version = version + 1
	WHERE id = $2 AND version = $3 AND $1 BETWEEN 0 AND max_tickets
	`

	result, err := q.db.ExecContext(ctx, query, ticketsSold, eventID, expectedVersion)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}
