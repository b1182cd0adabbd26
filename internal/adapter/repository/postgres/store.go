package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/srgjo27/ticketflow/internal/core/ports"
	"github.com/srgjo27/ticketflow/internal/platform/metrics"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db querier
}

type Store struct {
	*queries
	db          *sql.DB
	maxAttempts int
}

func NewStore(db *sql.DB, maxAttempts int) *Store {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Store{
		queries:     &queries{db: db},
		db:          db,
		maxAttempts: maxAttempts,
	}
}

// WithinTx runs fn in a SERIALIZABLE transaction. Serialization failures and
// lost version races roll back and re-run fn from the start.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, q ports.Queries) error) error {
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}

		metrics.TrackTxRetry("postgres")
		log.Debug().Err(err).Int("attempt", attempt).Msg("transaction conflict, retrying")

		backoff := time.Duration(attempt*10+rand.Intn(10)) * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("transaction aborted after %d attempts: %w", s.maxAttempts, ports.ErrConflict)
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, q ports.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if err := fn(ctx, &queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translate(err))
	}

	return nil
}

func isRetryable(err error) bool {
	if errors.Is(err, ports.ErrConflict) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return true
		}
	}

	return false
}

// translate maps unique violations to ErrConflict so the transaction is re-run
// and the authoritative checks see the winning row.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == sqlStateUniqueViolation {
		return fmt.Errorf("%w: %s", ports.ErrConflict, pqErr.Constraint)
	}

	return err
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ports.ErrConflict
	}

	return nil
}
