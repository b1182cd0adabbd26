package ports

import (
	"context"
	"errors"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// EventCache holds event snapshots for the non-authoritative inventory check.
type EventCache interface {
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	SetEvent(ctx context.Context, event *domain.Event) error
	Invalidate(ctx context.Context, eventID string) error
}
