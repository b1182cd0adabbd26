package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

func (s *Store) GetUser(ctx context.Context, uid string) (*domain.UserProfile, error) {
	query := `
	SELECT id, email, role, venue_id, active, payment_customer_id
	FROM users
	WHERE id = $1
	`

	var u domain.UserProfile
	err := s.db.QueryRowContext(ctx, query, uid).Scan(
		&u.UID,
		&u.Email,
		&u.Role,
		&u.VenueID,
		&u.Active,
		&u.PaymentCustomerID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}

		return nil, err
	}

	return &u, nil
}

func (s *Store) SetPaymentCustomerID(ctx context.Context, uid, customerID string) error {
	query := `
	INSERT INTO users (id, payment_customer_id)
	VALUES ($1, $2)
	ON CONFLICT (id) DO UPDATE SET payment_customer_id = EXCLUDED.payment_customer_id
	`

	_, err := s.db.ExecContext(ctx, query, uid, customerID)

	return err
}
