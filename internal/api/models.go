package api

import (
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// CompleteLessonRequest defines the payload for reporting a finished lesson.
// Only the XP amount is mandatory; the lesson reference and activity metrics
// are optional context.
type CompleteLessonRequest struct {
	XPGained         int64  `json:"xp_gained"           validate:"gte=0"`
	LessonID         string `json:"lesson_id,omitempty" validate:"omitempty"`
	TimeSpentMinutes int    `json:"time_spent_minutes"  validate:"gte=0"`
	WordsLearned     int    `json:"words_learned"       validate:"gte=0"`
	IsPerfect        bool   `json:"is_perfect"`

	// OccurredAt is the client's activity timestamp in RFC 3339; empty
	// means the server clock.
	OccurredAt string `json:"occurred_at,omitempty" validate:"omitempty"`
}

// ProgressResponse is the client view of a progress snapshot with the level
// curve applied.
type ProgressResponse struct {
	UserID              uuid.UUID  `json:"user_id"`
	XPTotal             int64      `json:"xp_total"`
	Level               int        `json:"level"`
	ProgressToNextLevel float64    `json:"progress_to_next_level"`
	StreakDays          int        `json:"streak_days"`
	MaxStreak           int        `json:"max_streak"`
	Coins               int64      `json:"coins"`
	StreakFreezes       int        `json:"streak_freezes"`
	FreezeExpiresAt     *time.Time `json:"freeze_expires_at,omitempty"`
	SuccessRate         float64    `json:"challenge_success_rate"`
	PreferredDifficulty string     `json:"preferred_difficulty"`
	LastLessonAt        *time.Time `json:"last_lesson_at,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// SubmitAnswerRequest defines the payload for one exercise answer.
type SubmitAnswerRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

// SubmitAnswerResponse reports the combo state after the answer.
type SubmitAnswerResponse struct {
	Combo      int     `json:"combo"`
	Multiplier float64 `json:"multiplier"`
	BonusXP    int64   `json:"bonus_xp"`
}

// ChallengeProgressRequest defines the payload for reporting challenge
// progress.
type ChallengeProgressRequest struct {
	Increment int `json:"increment" validate:"required,gt=0"`
}

// ChallengeProgressResponse reports the challenge state after an update.
type ChallengeProgressResponse struct {
	CurrentProgress int   `json:"current_progress"`
	IsCompleted     bool  `json:"is_completed"`
	CoinReward      int   `json:"coin_reward"`
	XPReward        int   `json:"xp_reward"`
	CoinsRemaining  int64 `json:"coins_remaining"`
}

// FreezeResponse reports the freeze economy state after a purchase or
// activation.
type FreezeResponse struct {
	Coins           int64      `json:"coins"`
	StreakFreezes   int        `json:"streak_freezes"`
	FreezeExpiresAt *time.Time `json:"freeze_expires_at,omitempty"`
}

// LeaderboardResponse is the ranked weekly leaderboard view, with the
// requesting user's own rank attached.
type LeaderboardResponse struct {
	Entries []LeaderboardEntryResponse `json:"entries"`
	MyRank  int64                      `json:"my_rank"`
}

// LeaderboardEntryResponse is a single ranked leaderboard row.
type LeaderboardEntryResponse struct {
	UserID uuid.UUID `json:"user_id"`
	XP     int64     `json:"xp"`
	Rank   int64     `json:"rank"`
}
