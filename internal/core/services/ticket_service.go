package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

type TicketService struct {
	store ports.Queries
}

func NewTicketService(store ports.Queries) *TicketService {
	return &TicketService{store: store}
}

func (s *TicketService) GetTicket(ctx context.Context, caller *domain.Identity, ticketID string) (ticket *domain.Ticket, err error) {
	logger := log.With().Str("caller_id", caller.UID).Str("ticket_id", ticketID).Logger()
	defer func() { err = surface(logger, "get_ticket", err) }()

	if ticketID == "" {
		return nil, domain.ErrInvalidArgument.WithMessage("ticket id is required")
	}

	ticket, err = s.store.GetTicket(ctx, ticketID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}

	if ticket.UserID == caller.UID {
		return ticket, nil
	}

	if caller.CanScan() && caller.CoversVenue(ticket.VenueID) {
		return ticket, nil
	}

	return nil, domain.ErrPermissionDenied
}
