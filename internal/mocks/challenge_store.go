package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/store"
)

// MockChallengeStore implements store.ChallengeStore for testing
type MockChallengeStore struct {
	// Function fields for customizable behavior
	GetActiveFn   func(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Challenge, error)
	CreateBatchFn func(ctx context.Context, challenges []*domain.Challenge) error
	UpdateFn      func(ctx context.Context, challenge *domain.Challenge) error

	// Data for default implementation
	mu         sync.Mutex
	Challenges map[uuid.UUID]*domain.Challenge
}

// NewMockChallengeStore creates a new mock store with initialized defaults
func NewMockChallengeStore() *MockChallengeStore {
	return &MockChallengeStore{
		Challenges: make(map[uuid.UUID]*domain.Challenge),
	}
}

// Get implements the ChallengeStore interface
func (m *MockChallengeStore) Get(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.Challenges[id]
	if !ok {
		return nil, store.ErrChallengeNotFound
	}
	copied := *ch
	return &copied, nil
}

// GetForUpdate implements the ChallengeStore interface; the mock has no row
// locks, so it behaves like Get
func (m *MockChallengeStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	return m.Get(ctx, id)
}

// GetActive implements the ChallengeStore interface
func (m *MockChallengeStore) GetActive(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Challenge, error) {
	if m.GetActiveFn != nil {
		return m.GetActiveFn(ctx, userID, now)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Challenge
	for _, ch := range m.Challenges {
		if ch.UserID == userID && now.Before(ch.ExpiresAt) {
			copied := *ch
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CreateBatch implements the ChallengeStore interface
func (m *MockChallengeStore) CreateBatch(ctx context.Context, challenges []*domain.Challenge) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, challenges)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range challenges {
		if err := ch.Validate(); err != nil {
			return err
		}
		copied := *ch
		m.Challenges[ch.ID] = &copied
	}
	return nil
}

// Update implements the ChallengeStore interface
func (m *MockChallengeStore) Update(ctx context.Context, challenge *domain.Challenge) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, challenge)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Challenges[challenge.ID]; !ok {
		return store.ErrChallengeNotFound
	}
	copied := *challenge
	m.Challenges[challenge.ID] = &copied
	return nil
}

// GetExpiredIncomplete implements the ChallengeStore interface
func (m *MockChallengeStore) GetExpiredIncomplete(ctx context.Context, before time.Time) ([]*domain.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Challenge
	for _, ch := range m.Challenges {
		if !ch.IsCompleted && !before.Before(ch.ExpiresAt) {
			copied := *ch
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteExpired implements the ChallengeStore interface
func (m *MockChallengeStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, ch := range m.Challenges {
		if !before.Before(ch.ExpiresAt) {
			delete(m.Challenges, id)
			deleted++
		}
	}
	return deleted, nil
}

// WithTx implements the ChallengeStore interface; the mock ignores transactions
func (m *MockChallengeStore) WithTx(tx *sql.Tx) store.ChallengeStore {
	return m
}
