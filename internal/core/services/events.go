package services

import "time"

type TicketIssuedEvent struct {
	TicketID        string    `json:"ticketId"`
	TicketNumber    string    `json:"ticketNumber"`
	EventID         string    `json:"eventId"`
	UserID          string    `json:"userId"`
	PaymentIntentID string    `json:"paymentIntentId"`
	IssuedAt        time.Time `json:"issuedAt"`
}

type TicketScannedEvent struct {
	TicketID     string    `json:"ticketId"`
	TicketNumber string    `json:"ticketNumber"`
	EventID      string    `json:"eventId"`
	VenueID      string    `json:"venueId"`
	ScannedBy    string    `json:"scannedBy"`
	ScannedAt    time.Time `json:"scannedAt"`
}

type RefundEvent struct {
	PaymentIntentID string    `json:"paymentIntentId"`
	UserID          string    `json:"userId"`
	EventID         string    `json:"eventId"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurredAt"`
}
