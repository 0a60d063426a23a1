package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/events"
	"github.com/phrazzld/lingo-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// addXP builds a mutation crediting delta XP to userID.
func addXP(userID uuid.UUID, delta int64) *Mutation {
	return NewMutation(MutationLessonCompleted, userID,
		func(ctx context.Context, current *domain.ProgressSnapshot) (*Outcome, error) {
			snap := current
			if snap == nil {
				snap = domain.NewProgressSnapshot(userID)
			}
			snap.XPTotal += delta
			return &Outcome{Snapshot: snap}, nil
		})
}

func TestSerializerConcurrentDeltasDoNotLoseUpdates(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	progressStore := mocks.NewMockProgressStore()
	seed := domain.NewProgressSnapshot(userID)
	seed.XPTotal = 100
	progressStore.Seed(seed)

	serializer := NewSerializer(progressStore, nil, 128, testLogger())
	serializer.Start()
	defer serializer.Stop()

	const producers = 50
	const delta = 10

	var wg sync.WaitGroup
	receipts := make([]*Receipt, producers)
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			receipt, err := serializer.Submit(context.Background(), addXP(userID, delta))
			require.NoError(t, err)
			receipts[i] = receipt
		}(i)
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, receipt := range receipts {
		res, err := receipt.Wait(ctx)
		require.NoError(t, err)
		require.NoError(t, res.Err)
	}

	final, err := progressStore.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100+producers*delta), final.XPTotal,
		"every concurrent delta must be applied exactly once")
}

func TestSerializerStartsFromEmptySnapshot(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	progressStore := mocks.NewMockProgressStore()

	serializer := NewSerializer(progressStore, nil, 0, testLogger())
	serializer.Start()
	defer serializer.Stop()

	var sawNil bool
	mutation := NewMutation(MutationLessonCompleted, userID,
		func(ctx context.Context, current *domain.ProgressSnapshot) (*Outcome, error) {
			sawNil = current == nil
			return &Outcome{Snapshot: domain.NewProgressSnapshot(userID)}, nil
		})

	receipt, err := serializer.Submit(context.Background(), mutation)
	require.NoError(t, err)

	res, err := receipt.Wait(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.True(t, sawNil, "a user without a persisted snapshot gets nil current")
	assert.Equal(t, userID, res.Snapshot.UserID)
}

func TestSerializerPersistenceFailureIsIsolated(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	progressStore := mocks.NewMockProgressStore()
	seed := domain.NewProgressSnapshot(userID)
	seed.XPTotal = 40
	progressStore.Seed(seed)

	boom := errors.New("connection reset")
	var failNext bool
	var mu sync.Mutex
	progressStore.SaveFn = func(ctx context.Context, snap *domain.ProgressSnapshot) error {
		mu.Lock()
		fail := failNext
		failNext = false
		mu.Unlock()
		if fail {
			return boom
		}
		progressStore.Seed(snap)
		return nil
	}

	serializer := NewSerializer(progressStore, nil, 16, testLogger())
	serializer.Start()
	defer serializer.Stop()

	mu.Lock()
	failNext = true
	mu.Unlock()

	failing, err := serializer.Submit(context.Background(), addXP(userID, 10))
	require.NoError(t, err)
	succeeding, err := serializer.Submit(context.Background(), addXP(userID, 10))
	require.NoError(t, err)

	res, err := failing.Wait(context.Background())
	require.NoError(t, err)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrPersistenceFailure)
	assert.Nil(t, res.Snapshot)

	// The failed mutation left the committed state untouched and the queue
	// kept processing.
	res, err = succeeding.Wait(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(50), res.Snapshot.XPTotal,
		"the failed delta must not leak into the committed snapshot")
}

func TestSerializerRejectedMutationPropagatesError(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	progressStore := mocks.NewMockProgressStore()

	serializer := NewSerializer(progressStore, nil, 16, testLogger())
	serializer.Start()
	defer serializer.Stop()

	mutation := NewMutation(MutationFreezePurchase, userID,
		func(ctx context.Context, current *domain.ProgressSnapshot) (*Outcome, error) {
			return nil, domain.ErrInsufficientBalance
		})

	receipt, err := serializer.Submit(context.Background(), mutation)
	require.NoError(t, err)

	res, err := receipt.Wait(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, domain.ErrInsufficientBalance)
	assert.Zero(t, progressStore.SaveCount, "a rejected mutation must not be persisted")
}

func TestSerializerSubmitAfterStop(t *testing.T) {
	t.Parallel()

	progressStore := mocks.NewMockProgressStore()
	serializer := NewSerializer(progressStore, nil, 16, testLogger())
	serializer.Start()
	serializer.Stop()

	_, err := serializer.Submit(context.Background(), addXP(uuid.New(), 1))
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestSerializerQueueFull(t *testing.T) {
	t.Parallel()

	progressStore := mocks.NewMockProgressStore()
	// Not started: nothing drains the queue.
	serializer := NewSerializer(progressStore, nil, 1, testLogger())

	_, err := serializer.Submit(context.Background(), addXP(uuid.New(), 1))
	require.NoError(t, err)

	_, err = serializer.Submit(context.Background(), addXP(uuid.New(), 1))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestSerializerEmitsEventsAfterCommit(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	progressStore := mocks.NewMockProgressStore()
	emitter := events.NewInMemoryEventEmitter(testLogger())

	var observed *domain.ProgressSnapshot
	handler := events.EventHandlerFunc(func(ctx context.Context, event *events.ProgressEvent) error {
		// The committed snapshot must already be readable when handlers run.
		snap, err := progressStore.Get(ctx, event.UserID)
		if err != nil {
			return err
		}
		observed = snap
		return nil
	})
	emitter.RegisterHandler(handler)

	serializer := NewSerializer(progressStore, emitter, 16, testLogger())
	serializer.Start()
	defer serializer.Stop()

	mutation := NewMutation(MutationLessonCompleted, userID,
		func(ctx context.Context, current *domain.ProgressSnapshot) (*Outcome, error) {
			snap := domain.NewProgressSnapshot(userID)
			snap.XPTotal = 25
			event, err := events.NewProgressEvent(events.EventXPChanged, userID,
				events.XPChangedPayload{Delta: 25, XPTotal: 25})
			if err != nil {
				return nil, err
			}
			return &Outcome{Snapshot: snap, Events: []*events.ProgressEvent{event}}, nil
		})

	receipt, err := serializer.Submit(context.Background(), mutation)
	require.NoError(t, err)
	res, err := receipt.Wait(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Err)

	require.NotNil(t, observed, "the handler must have run before the receipt resolved")
	assert.Equal(t, int64(25), observed.XPTotal)
}
