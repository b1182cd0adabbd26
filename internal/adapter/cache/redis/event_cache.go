package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

const defaultTTL = 30 * time.Second

type cachedEvent struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Venue       string          `json:"venue"`
	VenueID     string          `json:"venue_id"`
	Price       decimal.Decimal `json:"price"`
	MaxTickets  int             `json:"max_tickets"`
	TicketsSold int             `json:"tickets_sold"`
	StartTime   time.Time       `json:"start_time"`
	Timezone    string          `json:"timezone"`
	Version     int             `json:"version"`
}

type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &EventCache{client: client, ttl: ttl}
}

func eventKey(eventID string) string {
	return fmt.Sprintf("event:%s", eventID)
}

func (c *EventCache) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	raw, err := c.client.Get(ctx, eventKey(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached event: %w", err)
	}

	var ce cachedEvent
	if err := json.Unmarshal(raw, &ce); err != nil {
		return nil, fmt.Errorf("failed to decode cached event: %w", err)
	}

	return &domain.Event{
		ID:          ce.ID,
		Name:        ce.Name,
		Venue:       ce.Venue,
		VenueID:     ce.VenueID,
		Price:       ce.Price,
		MaxTickets:  ce.MaxTickets,
		TicketsSold: ce.TicketsSold,
		StartTime:   ce.StartTime,
		Timezone:    ce.Timezone,
		Version:     ce.Version,
	}, nil
}

func (c *EventCache) SetEvent(ctx context.Context, event *domain.Event) error {
	raw, err := json.Marshal(cachedEvent{
		ID:          event.ID,
		Name:        event.Name,
		Venue:       event.Venue,
		VenueID:     event.VenueID,
		Price:       event.Price,
		MaxTickets:  event.MaxTickets,
		TicketsSold: event.TicketsSold,
		StartTime:   event.StartTime,
		Timezone:    event.Timezone,
		Version:     event.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := c.client.Set(ctx, eventKey(event.ID), string(raw), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache event: %w", err)
	}

	return nil
}

func (c *EventCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, eventKey(eventID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached event: %w", err)
	}

	return nil
}
