package progression

import (
	"time"

	"github.com/phrazzld/lingo-api/internal/domain"
)

// milestoneDays are the streak lengths that emit a reward signal when first
// entered. The bonus for a milestone of n days is n * milestoneXPPerDay.
var milestoneDays = map[int]bool{
	3: true, 7: true, 14: true, 30: true, 50: true, 100: true, 365: true,
}

const milestoneXPPerDay = 5

// StreakTransition describes the outcome of feeding one activity timestamp
// through the streak state machine. The caller applies it to the snapshot.
type StreakTransition struct {
	// StreakDays and MaxStreak are the values after the transition.
	StreakDays int
	MaxStreak  int

	// Broken is true when a 2+ day gap reset the streak without a freeze.
	// A broken streak always carries XPBonus == 0.
	Broken bool

	// FreezeConsumed is true when an activated, unexpired freeze absorbed
	// the gap. The snapshot's freeze inventory is decremented at this point,
	// not at purchase time, and the active freeze window is cleared.
	FreezeConsumed bool

	// Milestone is the streak length whose milestone was entered by this
	// transition, or 0. XPBonus is the associated reward.
	Milestone int
	XPBonus   int64
}

// AdvanceStreak runs the streak state machine for an activity at the given
// instant. Continuity is judged on calendar-day difference in UTC, not on
// elapsed hours, so activity at 23:59 followed by 00:01 the next day counts
// as consecutive days.
//
// freezeCoversAnyGap controls the open freeze semantics: when true (the
// default) one unexpired freeze preserves the streak across a gap of any
// length; when false it only covers a single missed day.
func AdvanceStreak(
	snap *domain.ProgressSnapshot,
	now time.Time,
	freezeCoversAnyGap bool,
) StreakTransition {
	t := StreakTransition{
		StreakDays: snap.StreakDays,
		MaxStreak:  snap.MaxStreak,
	}

	switch {
	case snap.LastStreakUpdate == nil || snap.StreakDays == 0:
		// First qualifying activity ever, or activity after an admin reset.
		t.StreakDays = 1

	default:
		switch gap := calendarDaysBetween(*snap.LastStreakUpdate, now); {
		case gap <= 0:
			// Same calendar day: streak unchanged. Negative gaps cannot
			// reach here; stale timestamps are filtered by the ledger.

		case gap == 1:
			t.StreakDays = snap.StreakDays + 1
			t.Milestone, t.XPBonus = milestoneFor(t.StreakDays)

		default:
			if snap.HasActiveFreeze(now) && (freezeCoversAnyGap || gap == 2) {
				// The freeze absorbs the missed days; the streak is treated
				// as continuous and the count is preserved.
				t.FreezeConsumed = true
			} else {
				t.StreakDays = 1
				t.Broken = true
			}
		}
	}

	if t.StreakDays > t.MaxStreak {
		t.MaxStreak = t.StreakDays
	}
	return t
}

// milestoneFor returns the milestone entered at the given streak length and
// its XP bonus, or (0, 0) when the length is not a milestone.
func milestoneFor(streakDays int) (int, int64) {
	if !milestoneDays[streakDays] {
		return 0, 0
	}
	return streakDays, int64(streakDays * milestoneXPPerDay)
}

// calendarDaysBetween returns the number of calendar-day boundaries crossed
// between a and b, evaluated in UTC.
func calendarDaysBetween(a, b time.Time) int {
	au := a.UTC()
	bu := b.UTC()
	ad := time.Date(au.Year(), au.Month(), au.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(bu.Year(), bu.Month(), bu.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}
