package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

func (s *Store) AppendScanLog(ctx context.Context, entry *domain.ScanLog) error {
	query := `
	INSERT INTO scan_logs (id, ticket_id, event_id, venue_id, scanner_id, outcome, reason, scanned_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TicketID,
		entry.EventID,
		entry.VenueID,
		entry.ScannerID,
		entry.Outcome,
		entry.Reason,
		entry.ScannedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan log: %w", err)
	}

	return nil
}

func (s *Store) ListScanLogs(ctx context.Context, filter domain.ScanFilter) ([]domain.ScanLog, error) {
	filter.Normalize()

	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.TicketID != "" {
		add("ticket_id = $%d", filter.TicketID)
	}
	if filter.EventID != "" {
		add("event_id = $%d", filter.EventID)
	}
	if filter.VenueID != "" {
		add("venue_id = $%d", filter.VenueID)
	}
	if filter.ScannerID != "" {
		add("scanner_id = $%d", filter.ScannerID)
	}
	if filter.Outcome != "" {
		add("outcome = $%d", filter.Outcome)
	}
	if filter.Since != nil {
		add("scanned_at >= $%d", *filter.Since)
	}
	if filter.Until != nil {
		add("scanned_at <= $%d", *filter.Until)
	}

	query := `SELECT id, ticket_id, event_id, venue_id, scanner_id, outcome, reason, scanned_at FROM scan_logs`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY scanned_at DESC LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	logs := make([]domain.ScanLog, 0)
	for rows.Next() {
		var l domain.ScanLog
		if err := rows.Scan(
			&l.ID,
			&l.TicketID,
			&l.EventID,
			&l.VenueID,
			&l.ScannerID,
			&l.Outcome,
			&l.Reason,
			&l.ScannedAt,
		); err != nil {
			return nil, err
		}

		logs = append(logs, l)
	}

	return logs, rows.Err()
}
