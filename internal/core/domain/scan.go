package domain

import "time"

type ScanOutcome string

const (
	ScanSuccess     ScanOutcome = "success"
	ScanAlreadyUsed ScanOutcome = "already_used"
	ScanRejected    ScanOutcome = "rejected"
)

type ScanResult struct {
	Outcome      ScanOutcome
	TicketID     string
	TicketNumber string
	EventID      string
	EventName    string
	ScannedBy    string
	UsedAt       *time.Time
}

type ScanLog struct {
	ID        string
	TicketID  string
	EventID   string
	VenueID   string
	ScannerID string
	Outcome   ScanOutcome
	Reason    string
	ScannedAt time.Time
}

type ScanFilter struct {
	TicketID  string
	EventID   string
	VenueID   string
	ScannerID string
	Outcome   ScanOutcome
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

const (
	DefaultScanHistoryLimit = 50
	MaxScanHistoryLimit     = 500
)

func (f *ScanFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultScanHistoryLimit
	}

	if f.Limit > MaxScanHistoryLimit {
		f.Limit = MaxScanHistoryLimit
	}
}

func (f *ScanFilter) Matches(l *ScanLog) bool {
	if f.TicketID != "" && l.TicketID != f.TicketID {
		return false
	}
	if f.EventID != "" && l.EventID != f.EventID {
		return false
	}
	if f.VenueID != "" && l.VenueID != f.VenueID {
		return false
	}
	if f.ScannerID != "" && l.ScannerID != f.ScannerID {
		return false
	}
	if f.Outcome != "" && l.Outcome != f.Outcome {
		return false
	}
	if f.Since != nil && l.ScannedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && l.ScannedAt.After(*f.Until) {
		return false
	}

	return true
}
