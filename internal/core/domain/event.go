package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID          string
	Name        string
	Venue       string
	VenueID     string
	Price       decimal.Decimal
	MaxTickets  int
	TicketsSold int
	StartTime   time.Time
	Timezone    string
	Version     int
}

func (e *Event) Remaining() int {
	return e.MaxTickets - e.TicketsSold
}

// Location resolves the venue-local time zone, falling back when the event
// carries none or an unknown name.
func (e *Event) Location(fallback *time.Location) *time.Location {
	if e.Timezone != "" {
		if loc, err := time.LoadLocation(e.Timezone); err == nil {
			return loc
		}
	}

	if fallback == nil {
		return time.UTC
	}

	return fallback
}

// IsEventDay reports whether now falls on the same calendar day as the event
// start in loc.
func (e *Event) IsEventDay(now time.Time, loc *time.Location) bool {
	sy, sm, sd := e.StartTime.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()

	return sy == ny && sm == nm && sd == nd
}
