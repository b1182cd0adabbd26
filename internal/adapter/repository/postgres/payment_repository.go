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

func (q *queries) CreatePendingPayment(ctx context.Context, p *domain.PendingPayment) error {
	query := `
	INSERT INTO pending_payments (id, user_id, event_id, amount, currency, status, event_name, customer_email, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.db.ExecContext(ctx, query, p.ID, p.UserID, p.EventID, p.Amount, p.Currency, p.Status, p.EventName, p.CustomerEmail, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pending payment: %w", translate(err))
	}

	return nil
}

func (q *queries) GetPendingPayment(ctx context.Context, paymentIntentID string) (*domain.PendingPayment, error) {
	query := `
	SELECT id, user_id, event_id, amount, currency, status, event_name, customer_email, created_at
	FROM pending_payments
	WHERE id = $1
	`

	var p domain.PendingPayment
	err := q.db.QueryRowContext(ctx, query, paymentIntentID).Scan(
		&p.ID,
		&p.UserID,
		&p.EventID,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.EventName,
		&p.CustomerEmail,
		&p.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}

		return nil, err
	}

	return &p, nil
}

func (q *queries) ClaimPendingPayment(ctx context.Context, paymentIntentID string) error {
	query := `
	UPDATE pending_payments
	SET status = $1
	WHERE id = $2 AND status = $3
	`

	result, err := q.db.ExecContext(ctx, query, domain.PendingCompleted, paymentIntentID, domain.PendingAwaiting)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

func (q *queries) DeletePendingPayment(ctx context.Context, paymentIntentID string) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM pending_payments WHERE id = $1`, paymentIntentID)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

func (q *queries) CreateFailedPurchase(ctx context.Context, fp *domain.FailedPurchase) error {
	query := `
	INSERT INTO failed_purchases (id, user_id, event_id, payment_intent_id, amount, currency, reason, status, refund_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := q.db.ExecContext(ctx, query,
		fp.ID,
		fp.UserID,
		fp.EventID,
		fp.PaymentIntentID,
		fp.Amount,
		fp.Currency,
		fp.Reason,
		fp.Status,
		fp.RefundID,
		fp.CreatedAt,
		fp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert failed purchase: %w", err)
	}

	return nil
}

func (q *queries) UpdateFailedPurchase(ctx context.Context, id string, status domain.FailedPurchaseStatus, refundID string) error {
	query := `
	UPDATE failed_purchases
	SET status = $1,
		refund_id = CASE WHEN $2 = '' THEN refund_id ELSE $2 END,
		updated_at = $3
	WHERE id = $4
	`

	result, err := q.db.ExecContext(ctx, query, status, refundID, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (q *queries) HasFailedPurchase(ctx context.Context, paymentIntentID string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM failed_purchases WHERE payment_intent_id = $1)`, paymentIntentID).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
