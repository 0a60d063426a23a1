package progression

import (
	"math"
	"time"

	"github.com/phrazzld/lingo-api/internal/domain"
)

// difficultyMultipliers scale both a challenge's target and its rewards.
var difficultyMultipliers = map[domain.Difficulty]float64{
	domain.DifficultyEasy:   0.7,
	domain.DifficultyMedium: 1.0,
	domain.DifficultyHard:   1.5,
	domain.DifficultyEpic:   2.5,
}

// weekendRewardMultiplier doubles rewards generated on a calendar Saturday
// or Sunday. It applies after the difficulty multiplier and never touches
// the target.
const weekendRewardMultiplier = 2

// DifficultyMultiplier returns the scalar for the given tier. Unknown tiers
// fall back to the medium multiplier.
func DifficultyMultiplier(d domain.Difficulty) float64 {
	if m, ok := difficultyMultipliers[d]; ok {
		return m
	}
	return difficultyMultipliers[domain.DifficultyMedium]
}

// ScaleTarget scales a challenge's base target by the difficulty multiplier.
// The result is always at least 1.
func ScaleTarget(base int, d domain.Difficulty) int {
	scaled := int(math.Round(float64(base) * DifficultyMultiplier(d)))
	if scaled < 1 {
		return 1
	}
	return scaled
}

// ScaleReward scales a challenge's base reward by the difficulty multiplier,
// then doubles it when the weekend bonus applies.
func ScaleReward(base int, d domain.Difficulty, weekend bool) int {
	scaled := int(math.Round(float64(base) * DifficultyMultiplier(d)))
	if weekend {
		scaled *= weekendRewardMultiplier
	}
	return scaled
}

// IsWeekend reports whether t falls on a calendar Saturday or Sunday in UTC.
func IsWeekend(t time.Time) bool {
	switch t.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}
