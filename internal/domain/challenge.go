package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChallengeType identifies which activity metric a challenge tracks.
type ChallengeType string

// Challenge types map directly onto the fields reported with a lesson
// completion, so active challenges can be advanced automatically.
const (
	ChallengeEarnXP          ChallengeType = "earn_xp"
	ChallengeCompleteLessons ChallengeType = "complete_lessons"
	ChallengePerfectLessons  ChallengeType = "perfect_lessons"
	ChallengeLearnWords      ChallengeType = "learn_words"
	ChallengePracticeMinutes ChallengeType = "practice_minutes"
)

// Valid reports whether t is a known challenge type.
func (t ChallengeType) Valid() bool {
	switch t {
	case ChallengeEarnXP, ChallengeCompleteLessons, ChallengePerfectLessons,
		ChallengeLearnWords, ChallengePracticeMinutes:
		return true
	}
	return false
}

// Challenge is a time-boxed goal generated for a user at period rollover.
// Its target and rewards are scaled by the adaptively selected difficulty;
// a weekend flag doubles the rewards on top of the difficulty multiplier.
//
// A challenge references the progress snapshot read-only. Completing one
// credits XP and coins exclusively through the update serializer.
type Challenge struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"user_id"`
	Type            ChallengeType `json:"type"`
	Difficulty      Difficulty    `json:"difficulty"`
	TargetValue     int           `json:"target_value"`
	CurrentProgress int           `json:"current_progress"`
	CoinReward      int           `json:"coin_reward"`
	XPReward        int           `json:"xp_reward"`
	IsCompleted     bool          `json:"is_completed"`
	IsWeekendBonus  bool          `json:"is_weekend_bonus"`
	ExpiresAt       time.Time     `json:"expires_at"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Validate checks the challenge's invariants.
func (c *Challenge) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidChallenge)
	}
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidChallenge)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidChallenge, c.Type)
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidChallenge, c.Difficulty)
	}
	if c.TargetValue <= 0 {
		return fmt.Errorf("%w: target must be positive", ErrInvalidChallenge)
	}
	if c.CurrentProgress < 0 || c.CurrentProgress > c.TargetValue {
		return fmt.Errorf("%w: progress must be within [0, target]", ErrInvalidChallenge)
	}
	if c.CoinReward < 0 || c.XPReward < 0 {
		return fmt.Errorf("%w: rewards cannot be negative", ErrInvalidChallenge)
	}
	if c.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: expiry must be set", ErrInvalidChallenge)
	}
	return nil
}

// Expired reports whether the challenge's period has ended at the given instant.
func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Advance adds increment to the challenge progress, capped at the target,
// and reports whether this call completed the challenge. Completion happens
// exactly once: advancing an already completed challenge is a no-op.
func (c *Challenge) Advance(increment int, now time.Time) bool {
	if c.IsCompleted || increment <= 0 {
		return false
	}
	c.CurrentProgress += increment
	if c.CurrentProgress > c.TargetValue {
		c.CurrentProgress = c.TargetValue
	}
	c.UpdatedAt = now
	if c.CurrentProgress >= c.TargetValue {
		c.IsCompleted = true
		return true
	}
	return false
}
