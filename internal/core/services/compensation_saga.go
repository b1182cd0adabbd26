package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
	"github.com/srgjo27/ticketflow/internal/platform/metrics"
)

// CompensationSaga refunds a captured payment whose ticket could not be
// issued. The caller must hold the claim on the pending payment. Failed
// refunds are not retried.
type CompensationSaga struct {
	store     ports.Queries
	processor ports.PaymentProcessor
	publisher ports.EventPublisher
	now       func() time.Time
}

func NewCompensationSaga(store ports.Queries, processor ports.PaymentProcessor, publisher ports.EventPublisher) *CompensationSaga {
	return &CompensationSaga{
		store:     store,
		processor: processor,
		publisher: publisher,
		now:       time.Now,
	}
}

func RefundReasonFor(cause error) domain.RefundReason {
	if errors.Is(cause, domain.ErrDuplicateTicket) {
		return domain.RefundDuplicate
	}

	return domain.RefundRequestedByCustomer
}

func (c *CompensationSaga) Run(ctx context.Context, pending *domain.PendingPayment, cause *domain.Error) *domain.FailedPurchase {
	logger := log.With().
		Str("payment_intent_id", pending.ID).
		Str("user_id", pending.UserID).
		Str("event_id", pending.EventID).
		Str("cause", cause.Reason).
		Logger()

	now := c.now().UTC()
	fp := &domain.FailedPurchase{
		ID:              uuid.NewString(),
		UserID:          pending.UserID,
		EventID:         pending.EventID,
		PaymentIntentID: pending.ID,
		Amount:          pending.Amount,
		Currency:        pending.Currency,
		Reason:          cause.Message,
		Status:          domain.FailedRefundInitiated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	recorded := true
	if err := c.store.CreateFailedPurchase(ctx, fp); err != nil {
		recorded = false
		logger.Error().Err(err).Msg("failed to record failed purchase, refunding anyway")
	}

	reason := RefundReasonFor(cause)
	logger.Warn().Str("refund_reason", string(reason)).Msg("payment captured but ticket not issued, refunding")

	refundID, err := c.processor.CreateRefund(ctx, pending.ID, reason)
	if err != nil {
		fp.Status = domain.FailedRefundFailed
		logger.Error().Err(err).Msg("refund failed, manual reconciliation required")
	} else {
		fp.Status = domain.FailedRefunded
		fp.RefundID = refundID
		logger.Info().Str("refund_id", refundID).Msg("refund issued")
	}
	fp.UpdatedAt = c.now().UTC()

	if recorded {
		if err := c.store.UpdateFailedPurchase(ctx, fp.ID, fp.Status, fp.RefundID); err != nil {
			logger.Error().Err(err).Str("status", string(fp.Status)).Msg("failed to update failed purchase")
		}
	}

	metrics.TrackRefund(string(fp.Status), string(reason))

	if c.publisher != nil {
		evt := RefundEvent{
			PaymentIntentID: pending.ID,
			UserID:          pending.UserID,
			EventID:         pending.EventID,
			Amount:          pending.Amount,
			Currency:        pending.Currency,
			Reason:          cause.Reason,
			Status:          string(fp.Status),
			OccurredAt:      fp.UpdatedAt,
		}
		if err := c.publisher.Publish(ctx, ports.TopicPurchaseRefund, evt); err != nil {
			logger.Warn().Err(err).Msg("failed to publish refund event")
		}
	}

	return fp
}
