package services

import (
	"regexp"
	"strings"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

type CodeMethod string

const (
	CodeFromURL          CodeMethod = "url"
	CodeFromPayload      CodeMethod = "payload"
	CodeFromTicketNumber CodeMethod = "ticket_number"
	CodeFromTicketID     CodeMethod = "ticket_id"
)

const (
	minURLTicketIDLength = 10
	minRawTicketIDLength = 20
)

var (
	ticketURLPattern    = regexp.MustCompile(`/ticket/([A-Za-z0-9_-]+)`)
	ticketNumberPattern = regexp.MustCompile(`^TKT\d{11}$`)
	ticketIDPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

type ExtractedCode struct {
	Method       CodeMethod
	TicketID     string
	TicketNumber string
	Payload      *domain.TicketPayload
	Format       domain.PayloadFormat
}

// ExtractTicketCode tries a ticket URL, then a ticket payload in either
// format, then a bare ticket number or id. The first plausible match wins.
func ExtractTicketCode(raw string) (*ExtractedCode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.ErrInvalidFormat
	}

	if m := ticketURLPattern.FindStringSubmatch(raw); m != nil && len(m[1]) >= minURLTicketIDLength {
		return &ExtractedCode{Method: CodeFromURL, TicketID: m[1]}, nil
	}

	if p, format, ok := domain.ParseTicketPayload(raw); ok {
		return &ExtractedCode{Method: CodeFromPayload, TicketID: p.TicketID, Payload: &p, Format: format}, nil
	}

	if ticketNumberPattern.MatchString(raw) {
		return &ExtractedCode{Method: CodeFromTicketNumber, TicketNumber: raw}, nil
	}

	if len(raw) >= minRawTicketIDLength && ticketIDPattern.MatchString(raw) {
		return &ExtractedCode{Method: CodeFromTicketID, TicketID: raw}, nil
	}

	return nil, domain.ErrInvalidFormat
}
