package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
)

// ChallengeStore defines persistence for challenge records.
type ChallengeStore interface {
	// Get retrieves a challenge by ID.
	// Returns ErrChallengeNotFound if it does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)

	// GetForUpdate retrieves a challenge with a row-level lock
	// (SELECT ... FOR UPDATE). Use inside a transaction when the row will be
	// updated and concurrent completion must be excluded.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)

	// GetActive returns the user's unexpired challenges, completed ones
	// included, ordered by creation time.
	GetActive(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Challenge, error)

	// CreateBatch persists a generated challenge batch.
	CreateBatch(ctx context.Context, challenges []*domain.Challenge) error

	// Update modifies an existing challenge.
	// Returns ErrChallengeNotFound if it does not exist.
	Update(ctx context.Context, challenge *domain.Challenge) error

	// GetExpiredIncomplete returns challenges whose expiry has passed without
	// completion, for the rollover job to record as failures.
	GetExpiredIncomplete(ctx context.Context, before time.Time) ([]*domain.Challenge, error)

	// DeleteExpired removes challenges that expired before the given instant
	// and returns how many rows were deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	// WithTx returns a ChallengeStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ChallengeStore
}
