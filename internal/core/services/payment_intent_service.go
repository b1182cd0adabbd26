package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

type CreateIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	EventName       string `json:"eventName"`
}

type PaymentIntentService struct {
	store     ports.Store
	users     ports.UserRepository
	processor ports.PaymentProcessor
	validator *InventoryValidator
	currency  string
	now       func() time.Time
}

func NewPaymentIntentService(store ports.Store, users ports.UserRepository, processor ports.PaymentProcessor, validator *InventoryValidator, currency string) *PaymentIntentService {
	if currency == "" {
		currency = "usd"
	}

	return &PaymentIntentService{
		store:     store,
		users:     users,
		processor: processor,
		validator: validator,
		currency:  strings.ToLower(currency),
		now:       time.Now,
	}
}

func (s *PaymentIntentService) CreateIntent(ctx context.Context, caller *domain.Identity, eventID string) (resp *CreateIntentResponse, err error) {
	logger := log.With().Str("user_id", caller.UID).Str("event_id", eventID).Logger()
	defer func() { err = surface(logger, "create_payment_intent", err) }()

	if eventID == "" {
		return nil, domain.ErrInvalidArgument.WithMessage("eventId is required")
	}

	// Advisory only: a concurrent purchase can still win before confirmation.
	event, err := s.validator.SoftValidate(ctx, caller.UID, eventID)
	if err != nil {
		return nil, err
	}

	amount := event.Price.Shift(2).Round(0).IntPart()
	if amount < 1 {
		return nil, domain.ErrInvalidArgument.WithMessage("event %s has no purchasable price", eventID)
	}

	profile, err := s.users.GetUser(ctx, caller.UID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}

	email := caller.Email
	if email == "" && profile != nil {
		email = profile.Email
	}

	customerID, err := s.resolveCustomer(ctx, caller.UID, email, profile)
	if err != nil {
		logger.Error().Err(err).Msg("payment customer setup failed")
		return nil, domain.ErrPaymentSetupFailed
	}

	intent, err := s.processor.CreateIntent(ctx, ports.IntentParams{
		Amount:     amount,
		Currency:   s.currency,
		CustomerID: customerID,
		Metadata: map[string]string{
			domain.MetaEventID:   event.ID,
			domain.MetaUserID:    caller.UID,
			domain.MetaEventName: event.Name,
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("payment intent creation failed")
		return nil, domain.ErrPaymentSetupFailed
	}

	pending := &domain.PendingPayment{
		ID:            intent.ID,
		UserID:        caller.UID,
		EventID:       event.ID,
		Amount:        amount,
		Currency:      s.currency,
		Status:        domain.PendingAwaiting,
		EventName:     event.Name,
		CustomerEmail: email,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.store.CreatePendingPayment(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to record pending payment %s: %w", intent.ID, err)
	}

	logger.Info().Str("payment_intent_id", intent.ID).Int64("amount", amount).Msg("payment intent created")

	return &CreateIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount,
		Currency:        s.currency,
		EventName:       event.Name,
	}, nil
}

func (s *PaymentIntentService) resolveCustomer(ctx context.Context, uid, email string, profile *domain.UserProfile) (string, error) {
	if profile != nil && profile.PaymentCustomerID != "" {
		return profile.PaymentCustomerID, nil
	}

	customerID, err := s.processor.CreateCustomer(ctx, ports.CustomerParams{UserID: uid, Email: email})
	if err != nil {
		return "", err
	}

	if err := s.users.SetPaymentCustomerID(ctx, uid, customerID); err != nil {
		log.Warn().Err(err).Str("user_id", uid).Msg("failed to store payment customer id")
	}

	return customerID, nil
}
