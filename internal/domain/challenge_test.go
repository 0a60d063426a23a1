package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChallenge() *Challenge {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &Challenge{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Type:        ChallengeEarnXP,
		Difficulty:  DifficultyMedium,
		TargetValue: 50,
		CoinReward:  25,
		XPReward:    15,
		ExpiresAt:   now.AddDate(0, 0, 1),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestChallengeTypeValid(t *testing.T) {
	t.Parallel()

	for _, ct := range []ChallengeType{
		ChallengeEarnXP, ChallengeCompleteLessons, ChallengePerfectLessons,
		ChallengeLearnWords, ChallengePracticeMinutes,
	} {
		assert.True(t, ct.Valid(), string(ct))
	}
	assert.False(t, ChallengeType("climb_everest").Valid())
}

func TestChallengeValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*Challenge)
		wantErr bool
	}{
		{"valid challenge", func(c *Challenge) {}, false},
		{"nil id", func(c *Challenge) { c.ID = uuid.Nil }, true},
		{"nil user", func(c *Challenge) { c.UserID = uuid.Nil }, true},
		{"unknown type", func(c *Challenge) { c.Type = "swim" }, true},
		{"unknown difficulty", func(c *Challenge) { c.Difficulty = "brutal" }, true},
		{"zero target", func(c *Challenge) { c.TargetValue = 0 }, true},
		{"progress beyond target", func(c *Challenge) { c.CurrentProgress = 51 }, true},
		{"negative reward", func(c *Challenge) { c.CoinReward = -1 }, true},
		{"missing expiry", func(c *Challenge) { c.ExpiresAt = time.Time{} }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ch := newTestChallenge()
			tc.mutate(ch)

			err := ch.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidChallenge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChallengeExpired(t *testing.T) {
	t.Parallel()

	ch := newTestChallenge()
	assert.False(t, ch.Expired(ch.ExpiresAt.Add(-time.Second)))
	assert.True(t, ch.Expired(ch.ExpiresAt), "expiry instant is inclusive")
	assert.True(t, ch.Expired(ch.ExpiresAt.Add(time.Hour)))
}

func TestChallengeAdvance(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	t.Run("partial progress", func(t *testing.T) {
		t.Parallel()
		ch := newTestChallenge()

		completed := ch.Advance(20, now)

		assert.False(t, completed)
		assert.Equal(t, 20, ch.CurrentProgress)
		assert.False(t, ch.IsCompleted)
		assert.Equal(t, now, ch.UpdatedAt)
	})

	t.Run("completion caps at target", func(t *testing.T) {
		t.Parallel()
		ch := newTestChallenge()
		ch.CurrentProgress = 45

		completed := ch.Advance(100, now)

		assert.True(t, completed)
		assert.Equal(t, ch.TargetValue, ch.CurrentProgress)
		assert.True(t, ch.IsCompleted)
	})

	t.Run("completion happens exactly once", func(t *testing.T) {
		t.Parallel()
		ch := newTestChallenge()

		first := ch.Advance(50, now)
		second := ch.Advance(10, now.Add(time.Minute))

		assert.True(t, first)
		assert.False(t, second, "advancing a completed challenge must not re-complete it")
		assert.Equal(t, ch.TargetValue, ch.CurrentProgress)
	})

	t.Run("non-positive increments are no-ops", func(t *testing.T) {
		t.Parallel()
		ch := newTestChallenge()

		assert.False(t, ch.Advance(0, now))
		assert.False(t, ch.Advance(-5, now))
		assert.Zero(t, ch.CurrentProgress)
	})
}
