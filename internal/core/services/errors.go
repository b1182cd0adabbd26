package services

import (
	"github.com/rs/zerolog"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

// surface passes domain errors through unchanged. Anything else is logged with
// the caller's context and collapsed to a generic internal error.
func surface(logger zerolog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}

	if _, ok := domain.AsError(err); ok {
		return err
	}

	logger.Error().Err(err).Str("op", op).Msg("unexpected failure")

	return domain.ErrInternal
}

func reasonOf(err error) string {
	if err == nil {
		return ""
	}

	if de, ok := domain.AsError(err); ok {
		return de.Reason
	}

	return domain.ErrInternal.Reason
}
