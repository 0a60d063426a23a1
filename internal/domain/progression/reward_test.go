package progression

import (
	"testing"
	"time"

	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDifficultyMultiplier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.7, DifficultyMultiplier(domain.DifficultyEasy))
	assert.Equal(t, 1.0, DifficultyMultiplier(domain.DifficultyMedium))
	assert.Equal(t, 1.5, DifficultyMultiplier(domain.DifficultyHard))
	assert.Equal(t, 2.5, DifficultyMultiplier(domain.DifficultyEpic))
	assert.Equal(t, 1.0, DifficultyMultiplier(domain.Difficulty("bogus")))
}

func TestScaleTarget(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ScaleTarget(10, domain.DifficultyEasy))
	assert.Equal(t, 10, ScaleTarget(10, domain.DifficultyMedium))
	assert.Equal(t, 15, ScaleTarget(10, domain.DifficultyHard))
	assert.Equal(t, 25, ScaleTarget(10, domain.DifficultyEpic))

	// Rounding and the floor of 1.
	assert.Equal(t, 2, ScaleTarget(3, domain.DifficultyEasy))
	assert.Equal(t, 1, ScaleTarget(1, domain.DifficultyEasy))
}

func TestScaleReward(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20, ScaleReward(20, domain.DifficultyMedium, false))
	assert.Equal(t, 30, ScaleReward(20, domain.DifficultyHard, false))

	// The weekend doubling applies after the difficulty multiplier and only
	// to rewards.
	assert.Equal(t, 40, ScaleReward(20, domain.DifficultyMedium, true))
	assert.Equal(t, 60, ScaleReward(20, domain.DifficultyHard, true))
	assert.Equal(t, 100, ScaleReward(20, domain.DifficultyEpic, true))
}

func TestIsWeekend(t *testing.T) {
	t.Parallel()

	assert.True(t, IsWeekend(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)))  // Saturday
	assert.True(t, IsWeekend(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)))  // Sunday
	assert.False(t, IsWeekend(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))) // Friday
	assert.False(t, IsWeekend(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))) // Monday

	// Weekday is evaluated in UTC: Friday 23:00 in UTC-3 is already Saturday UTC.
	loc := time.FixedZone("UTC-3", -3*60*60)
	assert.True(t, IsWeekend(time.Date(2026, 8, 28, 23, 0, 0, 0, loc)))
}
