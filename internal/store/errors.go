package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants wrap it so callers can match either.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails domain validation
	// before being stored. The wrapped error carries the specific violation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails to
	// commit or an operation inside one fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrProgressNotFound indicates no progress snapshot exists for the user.
	ErrProgressNotFound = fmt.Errorf("%w: progress snapshot", ErrNotFound)

	// ErrChallengeNotFound indicates the requested challenge does not exist.
	ErrChallengeNotFound = fmt.Errorf("%w: challenge", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
