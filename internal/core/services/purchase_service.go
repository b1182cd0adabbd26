package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
	"github.com/srgjo27/ticketflow/internal/platform/metrics"
)

type ConfirmResult struct {
	Success       bool   `json:"success"`
	TicketID      string `json:"ticketId"`
	TicketNumber  string `json:"ticketNumber"`
	QRCodePayload string `json:"qrCodeData"`
	Message       string `json:"message"`
}

// inventoryRejection marks a validator failure discovered after payment
// capture. It is the only error that sends a purchase down the refund branch.
type inventoryRejection struct {
	cause *domain.Error
}

func (r *inventoryRejection) Error() string { return r.cause.Error() }
func (r *inventoryRejection) Unwrap() error { return r.cause }

type PurchaseService struct {
	store     ports.Store
	processor ports.PaymentProcessor
	validator *InventoryValidator
	issuer    *TicketIssuer
	saga      *CompensationSaga
	cache     ports.EventCache
	publisher ports.EventPublisher
	now       func() time.Time
}

func NewPurchaseService(
	store ports.Store,
	processor ports.PaymentProcessor,
	validator *InventoryValidator,
	issuer *TicketIssuer,
	cache ports.EventCache,
	publisher ports.EventPublisher,
) *PurchaseService {
	return &PurchaseService{
		store:     store,
		processor: processor,
		validator: validator,
		issuer:    issuer,
		saga:      NewCompensationSaga(store, processor, publisher),
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *PurchaseService) ConfirmPurchase(ctx context.Context, userID, paymentIntentID string) (result *ConfirmResult, err error) {
	logger := log.With().Str("payment_intent_id", paymentIntentID).Str("user_id", userID).Logger()

	var pending *domain.PendingPayment
	defer func() {
		switch {
		case err == nil:
			metrics.TrackPurchase("success")
		case isDomainError(err):
			metrics.TrackPurchase(reasonOf(err))
		default:
			metrics.TrackPurchase("internal")
			s.recordUnexpected(ctx, logger, userID, paymentIntentID, pending, err)
			err = surface(logger, "confirm_purchase", err)
		}
	}()

	if paymentIntentID == "" {
		return nil, domain.ErrInvalidArgument.WithMessage("paymentIntentId is required")
	}

	pending, err = s.store.GetPendingPayment(ctx, paymentIntentID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, s.missingPending(ctx, userID, paymentIntentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending payment: %w", err)
	}

	if pending.Status == domain.PendingCompleted {
		return nil, domain.ErrAlreadyProcessed
	}

	intent, err := s.processor.RetrieveIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	if intent.Status != domain.IntentSucceeded {
		return nil, domain.ErrPaymentNotCompleted.WithMessage("payment has not been completed (status: %s)", intent.Status)
	}

	if intent.Metadata[domain.MetaUserID] != userID || pending.UserID != userID {
		logger.Warn().Str("intent_user_id", intent.Metadata[domain.MetaUserID]).Msg("confirm attempted by another user")
		return nil, domain.ErrUnauthorizedPayment
	}

	var ticket *domain.Ticket
	err = s.store.WithinTx(ctx, func(ctx context.Context, q ports.Queries) error {
		current, err := q.GetPendingPayment(ctx, paymentIntentID)
		if errors.Is(err, ports.ErrNotFound) {
			return domain.ErrAlreadyProcessed
		}
		if err != nil {
			return err
		}
		if current.Status == domain.PendingCompleted {
			return domain.ErrAlreadyProcessed
		}

		event, err := s.validator.Validate(ctx, q, userID, pending.EventID)
		if err != nil {
			if de, ok := domain.AsError(err); ok {
				return &inventoryRejection{cause: de}
			}
			return err
		}

		ticket, err = s.issuer.Issue(ctx, q, IssueRequest{
			Event:           event,
			UserID:          userID,
			PaymentIntentID: paymentIntentID,
			PaymentMethod:   intent.PaymentMethod,
			CustomerEmail:   pending.CustomerEmail,
		})
		if err != nil {
			return err
		}

		return q.DeletePendingPayment(ctx, paymentIntentID)
	})

	var rejected *inventoryRejection
	if errors.As(err, &rejected) {
		ctx := context.WithoutCancel(ctx)
		if err := s.store.ClaimPendingPayment(ctx, paymentIntentID); err != nil {
			if errors.Is(err, ports.ErrConflict) || errors.Is(err, ports.ErrNotFound) {
				logger.Info().Str("cause", rejected.cause.Reason).Msg("refund already claimed by another confirm")
				return nil, domain.ErrAlreadyProcessed
			}
			return nil, fmt.Errorf("failed to claim pending payment: %w", err)
		}

		s.saga.Run(ctx, pending, rejected.cause)
		return nil, rejected.cause
	}
	if err != nil {
		return nil, err
	}

	logger.Info().Str("ticket_id", ticket.ID).Str("ticket_number", ticket.TicketNumber).Msg("ticket issued")
	s.afterIssue(ctx, logger, ticket)

	return &ConfirmResult{
		Success:       true,
		TicketID:      ticket.ID,
		TicketNumber:  ticket.TicketNumber,
		QRCodePayload: ticket.QRCodePayload,
		Message:       "Ticket purchased successfully",
	}, nil
}

func (s *PurchaseService) missingPending(ctx context.Context, userID, paymentIntentID string) error {
	ticket, err := s.store.GetTicketByPaymentIntent(ctx, paymentIntentID)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.ErrPaymentRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up ticket by payment intent: %w", err)
	}

	if ticket.UserID != userID {
		return domain.ErrPaymentRecordNotFound
	}

	return domain.ErrAlreadyProcessed
}

func (s *PurchaseService) afterIssue(ctx context.Context, logger zerolog.Logger, ticket *domain.Ticket) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, ticket.EventID); err != nil {
			logger.Warn().Err(err).Msg("failed to invalidate event cache")
		}
	}

	if s.publisher != nil {
		evt := TicketIssuedEvent{
			TicketID:        ticket.ID,
			TicketNumber:    ticket.TicketNumber,
			EventID:         ticket.EventID,
			UserID:          ticket.UserID,
			PaymentIntentID: ticket.PaymentIntentID,
			IssuedAt:        ticket.PurchaseDate,
		}
		if err := s.publisher.Publish(ctx, ports.TopicTicketIssued, evt); err != nil {
			logger.Warn().Err(err).Msg("failed to publish ticket issued event")
		}
	}
}

func (s *PurchaseService) recordUnexpected(ctx context.Context, logger zerolog.Logger, userID, paymentIntentID string, pending *domain.PendingPayment, cause error) {
	if paymentIntentID == "" {
		return
	}

	ctx = context.WithoutCancel(ctx)

	exists, err := s.store.HasFailedPurchase(ctx, paymentIntentID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to check failed purchase records")
		return
	}
	if exists {
		return
	}

	now := s.now().UTC()
	fp := &domain.FailedPurchase{
		ID:              uuid.NewString(),
		UserID:          userID,
		PaymentIntentID: paymentIntentID,
		Reason:          cause.Error(),
		Status:          domain.FailedError,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if pending != nil {
		fp.EventID = pending.EventID
		fp.Amount = pending.Amount
		fp.Currency = pending.Currency
	}

	if err := s.store.CreateFailedPurchase(ctx, fp); err != nil {
		logger.Error().Err(err).Msg("failed to record failed purchase")
	}
}

func isDomainError(err error) bool {
	_, ok := domain.AsError(err)
	return ok
}
