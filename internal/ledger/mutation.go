// Package ledger implements the update serializer: the single-writer
// pipeline through which every progress snapshot mutation flows. Mutations
// are enqueued in arrival order by any number of producers and applied one
// at a time by a single consumer, so concurrent XP deltas can never lose
// updates. Each submitter gets a receipt resolved when its mutation commits
// or fails; abandoning a receipt does not cancel the mutation.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/events"
)

// Errors surfaced by the serializer.
var (
	// ErrQueueClosed is returned when submitting after shutdown began.
	ErrQueueClosed = errors.New("mutation queue is closed")

	// ErrQueueFull is returned when the queue buffer is exhausted. The
	// mutation was not accepted and may be resubmitted.
	ErrQueueFull = errors.New("mutation queue is full")

	// ErrPersistenceFailure wraps a storage error encountered while
	// committing a mutation. The in-memory state is rolled back to the
	// pre-mutation snapshot and the queue keeps processing.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// MutationType labels what a mutation does, for logging and diagnostics.
type MutationType string

// Mutation types applied through the serializer.
const (
	MutationLessonCompleted  MutationType = "lesson_completed"
	MutationChallengeReward  MutationType = "challenge_reward"
	MutationChallengeOutcome MutationType = "challenge_outcome"
	MutationComboBonus       MutationType = "combo_bonus"
	MutationFreezePurchase   MutationType = "freeze_purchase"
	MutationFreezeActivation MutationType = "freeze_activation"
)

// Outcome is what a mutation produces: the snapshot to commit and the events
// to emit once the commit succeeds.
type Outcome struct {
	Snapshot *domain.ProgressSnapshot
	Events   []*events.ProgressEvent
}

// ApplyFunc computes a mutation's outcome from the last committed snapshot.
// current is nil when the user has no persisted snapshot yet; the function
// must then start from domain.NewProgressSnapshot. The function receives a
// private clone and must not retain it.
type ApplyFunc func(ctx context.Context, current *domain.ProgressSnapshot) (*Outcome, error)

// Mutation is one unit of serialized work against a user's snapshot.
type Mutation struct {
	ID     uuid.UUID
	Type   MutationType
	UserID uuid.UUID
	Apply  ApplyFunc
}

// NewMutation creates a mutation with a fresh ID.
func NewMutation(t MutationType, userID uuid.UUID, apply ApplyFunc) *Mutation {
	return &Mutation{
		ID:     uuid.New(),
		Type:   t,
		UserID: userID,
		Apply:  apply,
	}
}

// Result is delivered on a receipt when its mutation finishes.
type Result struct {
	// Snapshot is the committed snapshot, nil when Err is set.
	Snapshot *domain.ProgressSnapshot
	Err      error
}

// Receipt lets a submitter await its own mutation. The mutation applies
// whether or not the receipt is ever waited on.
type Receipt struct {
	MutationID uuid.UUID
	done       chan Result
}

// Wait blocks until the mutation commits or fails, or the context is
// cancelled. Cancellation abandons the wait only; the mutation still applies.
func (r *Receipt) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-r.done:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Done exposes the result channel for callers that select over it.
func (r *Receipt) Done() <-chan Result {
	return r.done
}

// submission pairs a mutation with the receipt channel of its submitter.
type submission struct {
	mutation   *Mutation
	enqueuedAt time.Time
	done       chan Result
}
