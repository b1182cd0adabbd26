package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticketflow/internal/adapter/repository/memory"
	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/services"
)

func TestGetTicket_Access(t *testing.T) {
	store := memory.NewStore()
	store.SeedTicket(domain.Ticket{
		ID:           testTicketID,
		EventID:      testEventID,
		UserID:       testHolderID,
		TicketNumber: testTicketNumber,
		VenueID:      testVenueID,
		Status:       domain.TicketConfirmed,
	})
	service := services.NewTicketService(store)

	tests := []struct {
		name    string
		caller  *domain.Identity
		id      string
		wantErr error
	}{
		{name: "owner", caller: &domain.Identity{UID: testHolderID, Role: domain.RoleUser, Active: true}, id: testTicketID},
		{name: "venue scanner", caller: &domain.Identity{UID: "s-1", Role: domain.RoleScanner, VenueID: testVenueID, Active: true}, id: testTicketID},
		{name: "site admin", caller: &domain.Identity{UID: "root", Role: domain.RoleSiteAdmin, Active: true}, id: testTicketID},
		{name: "other user", caller: &domain.Identity{UID: "u-2", Role: domain.RoleUser, Active: true}, id: testTicketID, wantErr: domain.ErrPermissionDenied},
		{name: "other venue scanner", caller: &domain.Identity{UID: "s-2", Role: domain.RoleScanner, VenueID: "venue-2", Active: true}, id: testTicketID, wantErr: domain.ErrPermissionDenied},
		{name: "missing", caller: &domain.Identity{UID: testHolderID, Active: true}, id: "nope", wantErr: domain.ErrTicketNotFound},
		{name: "empty id", caller: &domain.Identity{UID: testHolderID, Active: true}, wantErr: domain.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := service.GetTicket(context.Background(), tt.caller, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ticket)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testTicketNumber, ticket.TicketNumber)
		})
	}
}
