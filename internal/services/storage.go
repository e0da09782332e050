package services

import (
	"context"
	"errors"

	apperrors "pennywise/internal/errors"
)

// storageError maps a raw store error to the right AppError: timeouts and
// cancellations surface as retryable StorageUnavailable, everything else as
// a generic internal error. The original error is kept for logging.
func storageError(err error) *apperrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
