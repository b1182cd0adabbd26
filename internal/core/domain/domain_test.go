package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

func TestError_MatchesByReason(t *testing.T) {
	err := fmt.Errorf("confirm: %w", domain.ErrSoldOut.WithMessage("event %s is sold out", "evt-1"))

	assert.ErrorIs(t, err, domain.ErrSoldOut)
	assert.NotErrorIs(t, err, domain.ErrDuplicateTicket)

	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeFailedPrecondition, de.Code)
	assert.Equal(t, "event evt-1 is sold out", de.Error())
	assert.Equal(t, "this event is sold out", domain.ErrSoldOut.Message)

	_, ok = domain.AsError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestParseTicketPayload(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		ok     bool
		format domain.PayloadFormat
		want   string
	}{
		{"structured", `{"type":"EVENT_TICKET","ticketId":"t-1","eventId":"e-1","hash":"abc"}`, true, domain.PayloadStructured, "t-1"},
		{"legacy", "TICKET:t-2:EVENT:e-1:USER:u-1:NUMBER:TKT12345678901", true, domain.PayloadLegacy, "t-2"},
		{"padded legacy", "  TICKET:t-3:EVENT:e-1:USER:u-1:NUMBER:n  ", true, domain.PayloadLegacy, "t-3"},
		{"wrong type", `{"type":"COUPON","ticketId":"t-1"}`, false, 0, ""},
		{"broken json", `{"type":`, false, 0, ""},
		{"legacy missing id", "TICKET::EVENT:e-1:USER:u-1:NUMBER:n", false, 0, ""},
		{"legacy wrong labels", "TICKET:t:VENUE:e:USER:u:NUMBER:n", false, 0, ""},
		{"plain text", "hello", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, format, ok := domain.ParseTicketPayload(tt.raw)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.want, p.TicketID)
		})
	}
}

func TestTicketPayload_LegacyRoundTrip(t *testing.T) {
	in := domain.TicketPayload{TicketID: "t-1", EventID: "e-1", UserID: "u-1", TicketNumber: "TKT12345678901"}

	out, format, ok := domain.ParseTicketPayload(in.Legacy())

	require.True(t, ok)
	assert.Equal(t, domain.PayloadLegacy, format)
	assert.Equal(t, in.TicketNumber, out.TicketNumber)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Empty(t, out.Hash)
}

func TestEvent_IsEventDayUsesVenueZone(t *testing.T) {
	// 23:30 UTC on 1 March is already 2 March in Tokyo.
	start := time.Date(2026, 3, 2, 19, 0, 0, 0, time.FixedZone("JST", 9*3600))
	e := domain.Event{StartTime: start, Timezone: "Asia/Tokyo"}
	now := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	assert.True(t, e.IsEventDay(now, e.Location(time.UTC)))
	assert.False(t, e.IsEventDay(now, time.UTC))

	unknown := domain.Event{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, unknown.Location(nil))
}

func TestIdentity_Scope(t *testing.T) {
	scanner := domain.Identity{Role: domain.RoleScanner, VenueID: "v-1", Active: true}
	assert.True(t, scanner.CanScan())
	assert.True(t, scanner.CoversVenue("v-1"))
	assert.False(t, scanner.CoversVenue("v-2"))

	organiser := domain.Identity{Role: domain.RoleOrganiser, Active: true}
	assert.False(t, organiser.CanScan())

	inactive := domain.Identity{Role: domain.RoleSiteAdmin}
	assert.False(t, inactive.CanScan())
	assert.False(t, domain.Role("root").Valid())
}

func TestScanFilter_Normalize(t *testing.T) {
	f := domain.ScanFilter{}
	f.Normalize()
	assert.Equal(t, domain.DefaultScanHistoryLimit, f.Limit)

	f = domain.ScanFilter{Limit: 10000}
	f.Normalize()
	assert.Equal(t, domain.MaxScanHistoryLimit, f.Limit)
}

func TestTicket_StatusPredicates(t *testing.T) {
	tests := []struct {
		status domain.TicketStatus
		active bool
		redeem bool
	}{
		{domain.TicketConfirmed, true, true},
		{domain.TicketUsed, true, false},
		{domain.TicketCancelled, false, false},
		{domain.TicketRefunded, false, false},
		{domain.TicketDeleted, false, false},
	}

	for _, tt := range tests {
		ticket := domain.Ticket{Status: tt.status}
		assert.Equal(t, tt.active, ticket.IsActive(), string(tt.status))
		assert.Equal(t, tt.redeem, ticket.CanRedeem(), string(tt.status))
	}
}
