package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/services"
)

const qrImageSize = 256

type TicketHandler struct {
	tickets *services.TicketService
}

func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

type ticketResponse struct {
	ID            string              `json:"id"`
	EventID       string              `json:"eventId"`
	UserID        string              `json:"userId"`
	TicketNumber  string              `json:"ticketNumber"`
	QRCodeData    string              `json:"qrCodeData"`
	EventName     string              `json:"eventName"`
	VenueName     string              `json:"venueName"`
	VenueID       string              `json:"venueId"`
	Status        domain.TicketStatus `json:"status"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	TotalPrice    decimal.Decimal     `json:"totalPrice"`
	PurchaseDate  time.Time           `json:"purchaseDate"`
	UsedAt        *time.Time          `json:"usedAt,omitempty"`
	ScannedBy     string              `json:"scannedBy,omitempty"`
}

func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	t, err := h.tickets.GetTicket(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticketResponse{
		ID:            t.ID,
		EventID:       t.EventID,
		UserID:        t.UserID,
		TicketNumber:  t.TicketNumber,
		QRCodeData:    t.QRCodePayload,
		EventName:     t.EventName,
		VenueName:     t.VenueName,
		VenueID:       t.VenueID,
		Status:        t.Status,
		PaymentMethod: t.PaymentMethod,
		TotalPrice:    t.TotalPrice,
		PurchaseDate:  t.PurchaseDate,
		UsedAt:        t.UsedAt,
		ScannedBy:     t.ScannedBy,
	})
}

func (h *TicketHandler) GetTicketQR(w http.ResponseWriter, r *http.Request) {
	t, err := h.tickets.GetTicket(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	png, err := qrcode.Encode(t.QRCodePayload, qrcode.Medium, qrImageSize)
	if err != nil {
		log.Error().Err(err).Str("ticket_id", t.ID).Msg("failed to render ticket qr code")
		writeError(w, domain.ErrInternal)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
