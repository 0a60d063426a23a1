// Package mocks provides hand-rolled test doubles for the store interfaces.
// Each mock keeps an in-memory default implementation and function fields
// for overriding individual behaviors per test.
package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/store"
)

// MockProgressStore implements store.ProgressStore for testing
type MockProgressStore struct {
	// Function fields for customizable behavior
	GetFn  func(ctx context.Context, userID uuid.UUID) (*domain.ProgressSnapshot, error)
	SaveFn func(ctx context.Context, snap *domain.ProgressSnapshot) error

	// Data for default implementation
	mu        sync.Mutex
	Snapshots map[uuid.UUID]*domain.ProgressSnapshot
	SaveError error
	SaveCount int
}

// NewMockProgressStore creates a new mock store with initialized defaults
func NewMockProgressStore() *MockProgressStore {
	return &MockProgressStore{
		Snapshots: make(map[uuid.UUID]*domain.ProgressSnapshot),
	}
}

// Get implements the ProgressStore interface
func (m *MockProgressStore) Get(ctx context.Context, userID uuid.UUID) (*domain.ProgressSnapshot, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.Snapshots[userID]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return snap.Clone(), nil
}

// Save implements the ProgressStore interface
func (m *MockProgressStore) Save(ctx context.Context, snap *domain.ProgressSnapshot) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, snap)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCount++
	if m.SaveError != nil {
		return m.SaveError
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	m.Snapshots[snap.UserID] = snap.Clone()
	return nil
}

// WithTx implements the ProgressStore interface; the mock ignores transactions
func (m *MockProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return m
}

// Seed stores a snapshot directly, bypassing validation
func (m *MockProgressStore) Seed(snap *domain.ProgressSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots[snap.UserID] = snap.Clone()
}
