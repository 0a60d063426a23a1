// Package progression implements the pure algorithms of the progress engine:
// the level curve, the day-boundary streak state machine, the session combo
// tracker, the rolling performance model with adaptive difficulty selection,
// and challenge reward scaling.
//
// Functions in this package perform no I/O and never read the clock; callers
// pass timestamps in. State transitions follow the immutable pattern: the
// input snapshot is not modified, a transition result describes the change.
package progression

import "math"

// xpPerLevelUnit is the quadratic coefficient of the level curve: reaching
// level L requires 100 * L^2 total XP.
const xpPerLevelUnit = 100

// Level returns the level derived from cumulative XP.
//
// level(xp) = floor(sqrt(xp / 100)), so the thresholds are
// 0, 100, 400, 900, 1600, 2500, ... for levels 0..5.
func Level(xp int64) int {
	if xp <= 0 {
		return 0
	}
	return int(math.Sqrt(float64(xp) / xpPerLevelUnit))
}

// XPForLevel returns the cumulative XP required to reach the given level.
func XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	l := int64(level)
	return xpPerLevelUnit * l * l
}

// ProgressToNextLevel returns the fraction of the way from the current level
// boundary to the next, clamped to [0, 1]. It is exactly 0 at every level
// boundary (xp = 0, 100, 400, ...).
func ProgressToNextLevel(xp int64) float64 {
	if xp < 0 {
		return 0
	}
	level := Level(xp)
	floor := XPForLevel(level)
	ceil := XPForLevel(level + 1)
	progress := float64(xp-floor) / float64(ceil-floor)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
