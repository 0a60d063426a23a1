package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/lingo-api/internal/events"
	"github.com/phrazzld/lingo-api/internal/store"
)

// DefaultQueueSize is the buffer used when the configured size is zero.
const DefaultQueueSize = 256

// Serializer applies progress mutations strictly sequentially. Producers
// enqueue from any goroutine; a single consumer performs the full
// read-modify-persist cycle for one mutation before dequeuing the next.
//
// A persistence failure is reported on that mutation's receipt only; the
// committed snapshot is untouched (mutations operate on clones) and the
// queue continues with the next mutation. No automatic retry is performed.
type Serializer struct {
	progressStore store.ProgressStore
	emitter       events.EventEmitter
	queue         chan submission
	logger        *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewSerializer creates a serializer over the given store. Events produced
// by committed mutations are published through emitter; it may be nil in
// tests that do not observe events.
func NewSerializer(
	progressStore store.ProgressStore,
	emitter events.EventEmitter,
	queueSize int,
	logger *slog.Logger,
) *Serializer {
	if progressStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progressStore cannot be nil for Serializer")
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Serializer{
		progressStore: progressStore,
		emitter:       emitter,
		queue:         make(chan submission, queueSize),
		logger:        logger.With("component", "update_serializer"),
	}
}

// Start launches the single consumer goroutine.
func (s *Serializer) Start() {
	s.wg.Add(1)
	go s.consume()
}

// Stop closes the queue, waits for already-enqueued mutations to drain, and
// returns once the consumer has exited. Submissions after Stop fail with
// ErrQueueClosed.
func (s *Serializer) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("update serializer stopped")
}

// Submit validates nothing: callers reject invalid mutations synchronously
// before enqueueing. It places the mutation at the tail of the queue and
// returns a receipt. Submission never blocks on other callers' mutations;
// only application order is serialized.
func (s *Serializer) Submit(ctx context.Context, m *Mutation) (*Receipt, error) {
	sub := submission{
		mutation:   m,
		enqueuedAt: time.Now().UTC(),
		done:       make(chan Result, 1),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrQueueClosed
	}

	select {
	case s.queue <- sub:
		s.logger.Debug("mutation enqueued",
			"mutation_id", m.ID,
			"mutation_type", m.Type,
			"user_id", m.UserID,
			"queue_len", len(s.queue),
			"queue_cap", cap(s.queue))
		return &Receipt{MutationID: m.ID, done: sub.done}, nil
	default:
		return nil, fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(s.queue))
	}
}

// consume is the single writer. It owns the snapshot state for the duration
// of each mutation and resolves the submitter's receipt after the commit.
func (s *Serializer) consume() {
	defer s.wg.Done()

	for sub := range s.queue {
		res := s.apply(sub)

		// The receipt channel is buffered; an abandoned receipt never
		// blocks the consumer.
		sub.done <- res
	}
}

// apply runs one full read-modify-persist cycle.
func (s *Serializer) apply(sub submission) Result {
	ctx := context.Background()
	m := sub.mutation
	log := s.logger.With(
		"mutation_id", m.ID,
		"mutation_type", m.Type,
		"user_id", m.UserID,
	)

	current, err := s.progressStore.Get(ctx, m.UserID)
	if err != nil && !store.IsNotFoundError(err) {
		log.Error("failed to load snapshot", "error", err)
		return Result{Err: fmt.Errorf("%w: load: %v", ErrPersistenceFailure, err)}
	}
	if current != nil {
		// Hand the mutation a private copy; a failed commit then leaves the
		// committed snapshot untouched.
		current = current.Clone()
	}

	outcome, err := m.Apply(ctx, current)
	if err != nil {
		log.Warn("mutation rejected", "error", err)
		return Result{Err: err}
	}

	next := outcome.Snapshot
	next.UpdatedAt = time.Now().UTC()
	if err := next.Validate(); err != nil {
		log.Error("mutation produced invalid snapshot", "error", err)
		return Result{Err: err}
	}

	if err := s.progressStore.Save(ctx, next); err != nil {
		log.Error("failed to persist snapshot, mutation rolled back", "error", err)
		return Result{Err: fmt.Errorf("%w: save: %v", ErrPersistenceFailure, err)}
	}

	log.Debug("mutation committed",
		"xp_total", next.XPTotal,
		"streak_days", next.StreakDays,
		"queue_wait", time.Since(sub.enqueuedAt))

	// Events fire only after the commit so observers never see uncommitted
	// state. Handler errors are logged by the emitter and do not fail the
	// already-committed mutation.
	if s.emitter != nil {
		for _, event := range outcome.Events {
			if err := s.emitter.EmitEvent(ctx, event); err != nil {
				log.Warn("event handler reported error",
					"event_type", event.Type, "error", err)
			}
		}
	}

	return Result{Snapshot: next}
}
