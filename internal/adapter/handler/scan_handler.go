package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/services"
)

type ScanHandler struct {
	scans *services.ScanService
}

func NewScanHandler(scans *services.ScanService) *ScanHandler {
	return &ScanHandler{scans: scans}
}

type scanRequest struct {
	EventID      string `json:"eventId"`
	TicketID     string `json:"ticketId"`
	TicketNumber string `json:"ticketNumber"`
	QRCodeData   string `json:"qrCodeData"`
}

type scanResponse struct {
	Result       domain.ScanOutcome `json:"result"`
	TicketID     string             `json:"ticketId"`
	TicketNumber string             `json:"ticketNumber"`
	EventID      string             `json:"eventId"`
	EventName    string             `json:"eventName"`
	ScannedBy    string             `json:"scannedBy"`
	UsedAt       *time.Time         `json:"usedAt,omitempty"`
}

type scanLogResponse struct {
	ID        string             `json:"id"`
	TicketID  string             `json:"ticketId,omitempty"`
	EventID   string             `json:"eventId,omitempty"`
	VenueID   string             `json:"venueId,omitempty"`
	ScannerID string             `json:"scannerId"`
	Result    domain.ScanOutcome `json:"result"`
	Reason    string             `json:"reason,omitempty"`
	ScannedAt time.Time          `json:"scannedAt"`
}

func (h *ScanHandler) ScanTicket(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.scans.Scan(r.Context(), services.ScanRequest{
		ScannerID:    identityFrom(r.Context()).UID,
		EventID:      req.EventID,
		TicketID:     req.TicketID,
		TicketNumber: req.TicketNumber,
		QRCodeData:   req.QRCodeData,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Result:       res.Outcome,
		TicketID:     res.TicketID,
		TicketNumber: res.TicketNumber,
		EventID:      res.EventID,
		EventName:    res.EventName,
		ScannedBy:    res.ScannedBy,
		UsedAt:       res.UsedAt,
	})
}

func (h *ScanHandler) ScanHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := parseScanFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	logs, err := h.scans.History(r.Context(), identityFrom(r.Context()).UID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]scanLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, scanLogResponse{
			ID:        l.ID,
			TicketID:  l.TicketID,
			EventID:   l.EventID,
			VenueID:   l.VenueID,
			ScannerID: l.ScannerID,
			Result:    l.Outcome,
			Reason:    l.Reason,
			ScannedAt: l.ScannedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"scans": out})
}

func parseScanFilter(r *http.Request) (domain.ScanFilter, error) {
	q := r.URL.Query()

	filter := domain.ScanFilter{
		TicketID:  q.Get("ticketId"),
		EventID:   q.Get("eventId"),
		VenueID:   q.Get("venueId"),
		ScannerID: q.Get("scannerId"),
		Outcome:   domain.ScanOutcome(q.Get("result")),
	}

	switch filter.Outcome {
	case "", domain.ScanSuccess, domain.ScanAlreadyUsed, domain.ScanRejected:
	default:
		return filter, domain.ErrInvalidArgument.WithMessage("unknown result %q", filter.Outcome)
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, domain.ErrInvalidArgument.WithMessage("limit must be a non-negative integer")
		}
		filter.Limit = n
	}

	for name, dst := range map[string]**time.Time{"since": &filter.Since, "until": &filter.Until} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, domain.ErrInvalidArgument.WithMessage("%s must be an RFC 3339 timestamp", name)
		}
		*dst = &t
	}

	return filter, nil
}
