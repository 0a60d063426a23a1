// Package domain holds the core entities of the progress engine and their
// invariants. Types here carry no I/O; algorithmic transitions live in the
// progression subpackage and persistence behind the store interfaces.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Difficulty is the adaptive difficulty tier assigned to generated challenges.
type Difficulty string

// Supported difficulty tiers, ordered from easiest to hardest.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyEpic   Difficulty = "epic"
)

// Valid reports whether d is one of the supported difficulty tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyEpic:
		return true
	}
	return false
}

// ProgressSnapshot is the authoritative per-user progress record: XP, streak
// continuity, coin balance, freeze state and the rolling performance counters
// that drive adaptive difficulty.
//
// A snapshot is owned by the progress ledger and is only ever mutated through
// the update serializer, which applies one mutation fully before the next.
// Readers may observe the snapshot between any two serialized mutations but
// never a partial write.
type ProgressSnapshot struct {
	UserID uuid.UUID `json:"user_id"`

	// XPTotal is monotonically non-decreasing except for an explicit admin reset.
	XPTotal int64 `json:"xp_total"`

	StreakDays int `json:"streak_days"`
	MaxStreak  int `json:"max_streak"`

	// LastLessonAt is the timestamp of the most recent qualifying activity.
	LastLessonAt *time.Time `json:"last_lesson_at,omitempty"`

	// LastStreakUpdate is the timestamp of the last streak machine transition.
	LastStreakUpdate *time.Time `json:"last_streak_update,omitempty"`

	Coins         int64 `json:"coins"`
	StreakFreezes int   `json:"streak_freezes"`

	// FreezeExpiresAt is set while a streak freeze is activated and unconsumed.
	// The freeze lapses 24 hours after activation if it never averts a reset.
	FreezeExpiresAt *time.Time `json:"freeze_expires_at,omitempty"`

	ChallengeSuccessRate     float64 `json:"challenge_success_rate"`
	ConsecutiveSuccesses     int     `json:"consecutive_successes"`
	ConsecutiveFailures      int     `json:"consecutive_failures"`
	TotalChallengesAttempted int     `json:"total_challenges_attempted"`
	TotalChallengesCompleted int     `json:"total_challenges_completed"`

	PreferredDifficulty Difficulty `json:"preferred_difficulty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProgressSnapshot creates an empty snapshot for a user who has no
// recorded activity yet.
func NewProgressSnapshot(userID uuid.UUID) *ProgressSnapshot {
	now := time.Now().UTC()
	return &ProgressSnapshot{
		UserID:              userID,
		PreferredDifficulty: DifficultyMedium,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Validate checks the snapshot's invariants. It is called by the serializer
// after every mutation and by the stores before persistence.
func (s *ProgressSnapshot) Validate() error {
	if s.UserID == uuid.Nil {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidSnapshot)
	}
	if s.XPTotal < 0 {
		return fmt.Errorf("%w: xp total cannot be negative", ErrInvalidSnapshot)
	}
	if s.StreakDays < 0 || s.MaxStreak < 0 {
		return fmt.Errorf("%w: streak counters cannot be negative", ErrInvalidSnapshot)
	}
	if s.MaxStreak < s.StreakDays {
		return fmt.Errorf("%w: max streak cannot be below current streak", ErrInvalidSnapshot)
	}
	if s.Coins < 0 {
		return fmt.Errorf("%w: coin balance cannot be negative", ErrInvalidSnapshot)
	}
	if s.StreakFreezes < 0 {
		return fmt.Errorf("%w: freeze count cannot be negative", ErrInvalidSnapshot)
	}
	if s.ChallengeSuccessRate < 0 || s.ChallengeSuccessRate > 1 {
		return fmt.Errorf("%w: success rate must be within [0,1]", ErrInvalidSnapshot)
	}
	if s.ConsecutiveSuccesses < 0 || s.ConsecutiveFailures < 0 {
		return fmt.Errorf("%w: consecutive counters cannot be negative", ErrInvalidSnapshot)
	}
	// One of the two consecutive counters is always zero.
	if s.ConsecutiveSuccesses > 0 && s.ConsecutiveFailures > 0 {
		return fmt.Errorf("%w: consecutive counters are mutually exclusive", ErrInvalidSnapshot)
	}
	if s.TotalChallengesAttempted < 0 ||
		s.TotalChallengesCompleted < 0 ||
		s.TotalChallengesCompleted > s.TotalChallengesAttempted {
		return fmt.Errorf("%w: challenge totals are inconsistent", ErrInvalidSnapshot)
	}
	if !s.PreferredDifficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidSnapshot, s.PreferredDifficulty)
	}
	return nil
}

// Clone returns a deep copy of the snapshot. Mutations operate on a clone so
// a failed persistence attempt leaves the committed state untouched.
func (s *ProgressSnapshot) Clone() *ProgressSnapshot {
	out := *s
	if s.LastLessonAt != nil {
		t := *s.LastLessonAt
		out.LastLessonAt = &t
	}
	if s.LastStreakUpdate != nil {
		t := *s.LastStreakUpdate
		out.LastStreakUpdate = &t
	}
	if s.FreezeExpiresAt != nil {
		t := *s.FreezeExpiresAt
		out.FreezeExpiresAt = &t
	}
	return &out
}

// HasActiveFreeze reports whether a streak freeze is activated and unexpired
// at the given instant.
func (s *ProgressSnapshot) HasActiveFreeze(now time.Time) bool {
	return s.FreezeExpiresAt != nil && now.Before(*s.FreezeExpiresAt)
}
