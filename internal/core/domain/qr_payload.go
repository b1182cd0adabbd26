package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	PayloadType    = "EVENT_TICKET"
	PayloadVersion = "1.0"
)

type PayloadFormat int

const (
	PayloadStructured PayloadFormat = iota + 1
	PayloadLegacy
)

// TicketPayload is the content embedded in a ticket's QR code. Hash is empty
// for the legacy colon-delimited form.
type TicketPayload struct {
	Type         string `json:"type"`
	TicketID     string `json:"ticketId"`
	EventID      string `json:"eventId"`
	UserID       string `json:"userId"`
	TicketNumber string `json:"ticketNumber"`
	Timestamp    int64  `json:"timestamp"`
	Version      string `json:"version"`
	Hash         string `json:"hash"`
}

// Legacy renders the colon-delimited form: TICKET:<id>:EVENT:<id>:USER:<id>:NUMBER:<num>.
func (p TicketPayload) Legacy() string {
	return fmt.Sprintf("TICKET:%s:EVENT:%s:USER:%s:NUMBER:%s", p.TicketID, p.EventID, p.UserID, p.TicketNumber)
}

// ParseTicketPayload accepts both payload variants, trying the structured
// envelope first.
func ParseTicketPayload(raw string) (TicketPayload, PayloadFormat, bool) {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") {
		var p TicketPayload
		if err := json.Unmarshal([]byte(raw), &p); err == nil && p.Type == PayloadType && p.TicketID != "" {
			return p, PayloadStructured, true
		}

		return TicketPayload{}, 0, false
	}

	if p, ok := parseLegacy(raw); ok {
		return p, PayloadLegacy, true
	}

	return TicketPayload{}, 0, false
}

func parseLegacy(raw string) (TicketPayload, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 8 {
		return TicketPayload{}, false
	}

	if parts[0] != "TICKET" || parts[2] != "EVENT" || parts[4] != "USER" || parts[6] != "NUMBER" {
		return TicketPayload{}, false
	}

	if parts[1] == "" {
		return TicketPayload{}, false
	}

	return TicketPayload{
		Type:         PayloadType,
		TicketID:     parts[1],
		EventID:      parts[3],
		UserID:       parts[5],
		TicketNumber: parts[7],
	}, true
}
