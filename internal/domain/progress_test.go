package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressSnapshot(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	snap := NewProgressSnapshot(userID)

	assert.Equal(t, userID, snap.UserID)
	assert.Zero(t, snap.XPTotal)
	assert.Zero(t, snap.StreakDays)
	assert.Equal(t, DifficultyMedium, snap.PreferredDifficulty)
	assert.NoError(t, snap.Validate())
}

func TestProgressSnapshotValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*ProgressSnapshot)
		wantErr bool
	}{
		{"valid zero snapshot", func(s *ProgressSnapshot) {}, false},
		{"nil user", func(s *ProgressSnapshot) { s.UserID = uuid.Nil }, true},
		{"negative xp", func(s *ProgressSnapshot) { s.XPTotal = -1 }, true},
		{"negative streak", func(s *ProgressSnapshot) { s.StreakDays = -1 }, true},
		{"max streak below current", func(s *ProgressSnapshot) { s.StreakDays = 5; s.MaxStreak = 3 }, true},
		{"negative coins", func(s *ProgressSnapshot) { s.Coins = -10 }, true},
		{"negative freezes", func(s *ProgressSnapshot) { s.StreakFreezes = -1 }, true},
		{"success rate above one", func(s *ProgressSnapshot) { s.ChallengeSuccessRate = 1.2 }, true},
		{
			"both consecutive counters set",
			func(s *ProgressSnapshot) { s.ConsecutiveSuccesses = 1; s.ConsecutiveFailures = 1 },
			true,
		},
		{
			"completed above attempted",
			func(s *ProgressSnapshot) { s.TotalChallengesCompleted = 2; s.TotalChallengesAttempted = 1 },
			true,
		},
		{"unknown difficulty", func(s *ProgressSnapshot) { s.PreferredDifficulty = "brutal" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			snap := NewProgressSnapshot(uuid.New())
			tc.mutate(snap)

			err := snap.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSnapshot)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProgressSnapshotClone(t *testing.T) {
	t.Parallel()

	snap := NewProgressSnapshot(uuid.New())
	last := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snap.LastLessonAt = &last
	snap.LastStreakUpdate = &last
	expires := last.Add(24 * time.Hour)
	snap.FreezeExpiresAt = &expires

	clone := snap.Clone()
	clone.XPTotal = 500
	*clone.LastLessonAt = last.AddDate(0, 0, 5)
	clone.FreezeExpiresAt = nil

	assert.Zero(t, snap.XPTotal)
	assert.Equal(t, last, *snap.LastLessonAt, "clone must not share timestamp pointers")
	assert.NotNil(t, snap.FreezeExpiresAt)
}

func TestHasActiveFreeze(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snap := NewProgressSnapshot(uuid.New())

	assert.False(t, snap.HasActiveFreeze(now), "no freeze set")

	expires := now.Add(time.Hour)
	snap.FreezeExpiresAt = &expires
	assert.True(t, snap.HasActiveFreeze(now))
	assert.False(t, snap.HasActiveFreeze(expires), "expiry instant is exclusive")
	assert.False(t, snap.HasActiveFreeze(expires.Add(time.Minute)))
}
