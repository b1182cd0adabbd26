package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

// InventoryValidator checks the one-ticket-per-user rule and remaining
// capacity. Only Validate through a transaction handle is authoritative.
type InventoryValidator struct {
	store ports.Queries
	cache ports.EventCache
}

func NewInventoryValidator(store ports.Queries, cache ports.EventCache) *InventoryValidator {
	return &InventoryValidator{store: store, cache: cache}
}

func (v *InventoryValidator) Validate(ctx context.Context, q ports.Queries, userID, eventID string) (*domain.Event, error) {
	if err := v.checkDuplicate(ctx, q, userID, eventID); err != nil {
		return nil, err
	}

	event, err := q.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}

		return nil, fmt.Errorf("failed to read event %s: %w", eventID, err)
	}

	if err := checkCapacity(event); err != nil {
		return nil, err
	}

	return event, nil
}

func (v *InventoryValidator) SoftValidate(ctx context.Context, userID, eventID string) (*domain.Event, error) {
	if err := v.checkDuplicate(ctx, v.store, userID, eventID); err != nil {
		return nil, err
	}

	event, err := v.cachedEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := checkCapacity(event); err != nil {
		return nil, err
	}

	return event, nil
}

func (v *InventoryValidator) checkDuplicate(ctx context.Context, q ports.Queries, userID, eventID string) error {
	exists, err := q.HasActiveTicket(ctx, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to check existing tickets: %w", err)
	}

	if exists {
		return domain.ErrDuplicateTicket
	}

	return nil
}

func (v *InventoryValidator) cachedEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	if v.cache != nil {
		event, err := v.cache.GetEvent(ctx, eventID)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			log.Warn().Err(err).Str("event_id", eventID).Msg("event cache read failed")
		}
	}

	event, err := v.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}

		return nil, fmt.Errorf("failed to read event %s: %w", eventID, err)
	}

	if v.cache != nil {
		if err := v.cache.SetEvent(ctx, event); err != nil {
			log.Warn().Err(err).Str("event_id", eventID).Msg("event cache write failed")
		}
	}

	return event, nil
}

func checkCapacity(event *domain.Event) error {
	if event.Remaining() < 1 {
		return domain.ErrSoldOut
	}

	return nil
}
