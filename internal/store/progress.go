package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
)

// ProgressStore defines persistence for progress snapshots.
//
// All writes flow through the update serializer, which is the only component
// allowed to call Save. Reads may happen from any goroutine and always see
// the last committed snapshot.
type ProgressStore interface {
	// Get retrieves the progress snapshot for a user.
	// Returns ErrProgressNotFound if none has been persisted yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.ProgressSnapshot, error)

	// Save upserts the snapshot. It validates the snapshot first and returns
	// ErrInvalidEntity wrapping the violation if it fails.
	Save(ctx context.Context, snap *domain.ProgressSnapshot) error

	// WithTx returns a ProgressStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
