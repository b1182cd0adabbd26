package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
	"github.com/srgjo27/ticketflow/internal/platform/metrics"
)

type ScanRequest struct {
	ScannerID    string
	EventID      string
	TicketID     string
	TicketNumber string
	QRCodeData   string
}

func (r ScanRequest) rawCode() string {
	switch {
	case r.QRCodeData != "":
		return r.QRCodeData
	case r.TicketID != "":
		return r.TicketID
	default:
		return r.TicketNumber
	}
}

// ScanService redeems tickets at the door. A ticket moves confirmed -> used
// at most once.
type ScanService struct {
	store      ports.Store
	logs       ports.ScanLogRepository
	identity   ports.IdentityResolver
	signer     *TicketSigner
	publisher  ports.EventPublisher
	defaultLoc *time.Location
	now        func() time.Time
}

func NewScanService(
	store ports.Store,
	logs ports.ScanLogRepository,
	identity ports.IdentityResolver,
	signer *TicketSigner,
	publisher ports.EventPublisher,
	defaultLoc *time.Location,
) *ScanService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}

	return &ScanService{
		store:      store,
		logs:       logs,
		identity:   identity,
		signer:     signer,
		publisher:  publisher,
		defaultLoc: defaultLoc,
		now:        time.Now,
	}
}

func (s *ScanService) Scan(ctx context.Context, req ScanRequest) (result *domain.ScanResult, err error) {
	logger := log.With().Str("scanner_id", req.ScannerID).Str("event_id", req.EventID).Logger()
	defer func() { err = surface(logger, "scan_ticket", err) }()

	entry := &domain.ScanLog{
		ID:        uuid.NewString(),
		EventID:   req.EventID,
		ScannerID: req.ScannerID,
	}
	defer func() { s.record(ctx, logger, entry, result, err) }()

	scanner, err := s.identity.Lookup(ctx, req.ScannerID)
	if err != nil {
		return nil, err
	}
	entry.VenueID = scanner.VenueID

	if !scanner.CanScan() {
		logger.Warn().Str("role", string(scanner.Role)).Bool("active", scanner.Active).Msg("scan denied")
		return nil, domain.ErrPermissionDenied.WithMessage("you do not have permission to scan tickets")
	}

	raw := req.rawCode()
	if raw == "" {
		return nil, domain.ErrInvalidArgument.WithMessage("qrCodeData, ticketId or ticketNumber is required")
	}

	code, err := ExtractTicketCode(raw)
	if err != nil {
		return nil, err
	}

	var ticket *domain.Ticket
	var event *domain.Event
	now := s.now().UTC()

	err = s.store.WithinTx(ctx, func(ctx context.Context, q ports.Queries) error {
		result = nil

		ticket, err = loadScannedTicket(ctx, q, code)
		if err != nil {
			return err
		}
		entry.TicketID = ticket.ID
		entry.EventID = ticket.EventID

		event, err = q.GetEvent(ctx, ticket.EventID)
		if errors.Is(err, ports.ErrNotFound) {
			return domain.ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read event %s: %w", ticket.EventID, err)
		}

		venueID := ticket.VenueID
		if venueID == "" {
			venueID = event.VenueID
		}
		entry.VenueID = venueID

		if err := s.checkTicket(scanner, req.EventID, venueID, code, ticket, event, now); err != nil {
			return err
		}

		switch {
		case ticket.Status == domain.TicketUsed:
			result = &domain.ScanResult{
				Outcome:      domain.ScanAlreadyUsed,
				TicketID:     ticket.ID,
				TicketNumber: ticket.TicketNumber,
				EventID:      ticket.EventID,
				EventName:    event.Name,
				ScannedBy:    ticket.ScannedBy,
				UsedAt:       ticket.UsedAt,
			}
			return nil
		case ticket.Status == domain.TicketCancelled:
			return domain.ErrTicketCancelled
		case !ticket.CanRedeem():
			return domain.ErrTicketUnusable.WithMessage("this ticket can no longer be used (status: %s)", ticket.Status)
		}

		if err := q.MarkTicketUsed(ctx, ticket.ID, scanner.UID, now, ticket.Version); err != nil {
			return err
		}

		usedAt := now
		result = &domain.ScanResult{
			Outcome:      domain.ScanSuccess,
			TicketID:     ticket.ID,
			TicketNumber: ticket.TicketNumber,
			EventID:      ticket.EventID,
			EventName:    event.Name,
			ScannedBy:    scanner.UID,
			UsedAt:       &usedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome == domain.ScanSuccess {
		logger.Info().Str("ticket_id", ticket.ID).Str("ticket_number", ticket.TicketNumber).Msg("ticket redeemed")
		s.publishScanned(ctx, logger, result, entry.VenueID)
	} else {
		logger.Info().Str("ticket_id", ticket.ID).Str("scanned_by", ticket.ScannedBy).Msg("ticket already used")
	}

	return result, nil
}

func (s *ScanService) checkTicket(scanner *domain.Identity, hintEventID, venueID string, code *ExtractedCode, ticket *domain.Ticket, event *domain.Event, now time.Time) error {
	if !scanner.CoversVenue(venueID) {
		return domain.ErrVenueMismatch
	}

	if hintEventID != "" && ticket.EventID != hintEventID {
		return domain.ErrWrongEvent
	}

	if p := code.Payload; p != nil {
		if p.TicketID != ticket.ID || p.EventID != ticket.EventID || p.UserID != ticket.UserID {
			return domain.ErrInvalidSignature
		}
		if code.Format == domain.PayloadStructured && !s.signer.Verify(*p) {
			return domain.ErrInvalidSignature
		}
	}

	if !event.IsEventDay(now, event.Location(s.defaultLoc)) {
		return domain.ErrNotEventDay
	}

	return nil
}

func loadScannedTicket(ctx context.Context, q ports.Queries, code *ExtractedCode) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	var err error

	if code.TicketNumber != "" {
		ticket, err = q.GetTicketByNumber(ctx, code.TicketNumber)
	} else {
		ticket, err = q.GetTicket(ctx, code.TicketID)
	}

	if errors.Is(err, ports.ErrNotFound) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}

	return ticket, nil
}

func (s *ScanService) record(ctx context.Context, logger zerolog.Logger, entry *domain.ScanLog, result *domain.ScanResult, err error) {
	entry.ScannedAt = s.now().UTC()

	switch {
	case err != nil:
		entry.Outcome = domain.ScanRejected
		entry.Reason = reasonOf(err)
	case result != nil:
		entry.Outcome = result.Outcome
	}

	metrics.TrackScan(string(entry.Outcome), entry.Reason)

	if s.logs == nil {
		return
	}

	if appendErr := s.logs.AppendScanLog(context.WithoutCancel(ctx), entry); appendErr != nil {
		logger.Warn().Err(appendErr).Msg("failed to append scan log")
	}
}

func (s *ScanService) publishScanned(ctx context.Context, logger zerolog.Logger, result *domain.ScanResult, venueID string) {
	if s.publisher == nil {
		return
	}

	evt := TicketScannedEvent{
		TicketID:     result.TicketID,
		TicketNumber: result.TicketNumber,
		EventID:      result.EventID,
		VenueID:      venueID,
		ScannedBy:    result.ScannedBy,
		ScannedAt:    *result.UsedAt,
	}
	if err := s.publisher.Publish(ctx, ports.TopicTicketScanned, evt); err != nil {
		logger.Warn().Err(err).Msg("failed to publish ticket scanned event")
	}
}

func (s *ScanService) History(ctx context.Context, callerID string, filter domain.ScanFilter) (logs []domain.ScanLog, err error) {
	logger := log.With().Str("caller_id", callerID).Logger()
	defer func() { err = surface(logger, "scan_history", err) }()

	caller, err := s.identity.Lookup(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if !caller.CanScan() {
		return nil, domain.ErrPermissionDenied.WithMessage("you do not have permission to view scan history")
	}

	if caller.Role != domain.RoleSiteAdmin && caller.VenueID != "" {
		if filter.VenueID != "" && filter.VenueID != caller.VenueID {
			return nil, domain.ErrVenueMismatch.WithMessage("you can only view scans for your own venue")
		}
		filter.VenueID = caller.VenueID
	}

	if filter.Since != nil && filter.Until != nil && filter.Since.After(*filter.Until) {
		return nil, domain.ErrInvalidArgument.WithMessage("since must not be after until")
	}

	filter.Normalize()

	logs, err = s.logs.ListScanLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan logs: %w", err)
	}

	return logs, nil
}
