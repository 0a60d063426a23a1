package progression

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

// snapshotWithStreak builds a snapshot whose last streak transition happened
// at lastUpdate with the given streak length.
func snapshotWithStreak(streakDays int, lastUpdate time.Time) *domain.ProgressSnapshot {
	snap := domain.NewProgressSnapshot(uuid.New())
	snap.StreakDays = streakDays
	snap.MaxStreak = streakDays
	snap.LastStreakUpdate = &lastUpdate
	return snap
}

func TestAdvanceStreakFirstActivity(t *testing.T) {
	t.Parallel()

	snap := domain.NewProgressSnapshot(uuid.New())
	tr := AdvanceStreak(snap, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), true)

	assert.Equal(t, 1, tr.StreakDays)
	assert.Equal(t, 1, tr.MaxStreak)
	assert.False(t, tr.Broken)
	assert.False(t, tr.FreezeConsumed)
	assert.Zero(t, tr.Milestone)
}

func TestAdvanceStreakSameDay(t *testing.T) {
	t.Parallel()

	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)

	snap := snapshotWithStreak(4, morning)
	tr := AdvanceStreak(snap, evening, true)

	assert.Equal(t, 4, tr.StreakDays, "second lesson on the same day must not increment")
	assert.False(t, tr.Broken)
	assert.Zero(t, tr.Milestone)
}

func TestAdvanceStreakNextDay(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		last time.Time
		now  time.Time
	}{
		{
			name: "noon to noon",
			last: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			now:  time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "day boundary is calendar based, not 24h based",
			last: time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
			now:  time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC),
		},
		{
			name: "month boundary",
			last: time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC),
			now:  time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			snap := snapshotWithStreak(4, tc.last)
			tr := AdvanceStreak(snap, tc.now, true)

			assert.Equal(t, 5, tr.StreakDays)
			assert.Equal(t, 5, tr.MaxStreak)
			assert.False(t, tr.Broken)
		})
	}
}

func TestAdvanceStreakGapResets(t *testing.T) {
	t.Parallel()

	last := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snap := snapshotWithStreak(9, last)
	snap.MaxStreak = 15

	tr := AdvanceStreak(snap, last.AddDate(0, 0, 3), true)

	assert.Equal(t, 1, tr.StreakDays)
	assert.True(t, tr.Broken)
	assert.False(t, tr.FreezeConsumed)
	assert.Equal(t, 15, tr.MaxStreak, "max streak survives the reset")
	assert.Zero(t, tr.XPBonus, "a broken streak never pays a bonus")
}

func TestAdvanceStreakFreezeConsumption(t *testing.T) {
	t.Parallel()

	last := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("active freeze preserves the streak", func(t *testing.T) {
		t.Parallel()
		now := last.AddDate(0, 0, 2)
		snap := snapshotWithStreak(9, last)
		snap.StreakFreezes = 1
		expires := now.Add(time.Hour)
		snap.FreezeExpiresAt = &expires

		tr := AdvanceStreak(snap, now, true)

		assert.Equal(t, 9, tr.StreakDays, "the frozen day does not increment the streak")
		assert.True(t, tr.FreezeConsumed)
		assert.False(t, tr.Broken)
	})

	t.Run("expired freeze does not protect", func(t *testing.T) {
		t.Parallel()
		now := last.AddDate(0, 0, 2)
		snap := snapshotWithStreak(9, last)
		snap.StreakFreezes = 1
		expires := now.Add(-time.Minute)
		snap.FreezeExpiresAt = &expires

		tr := AdvanceStreak(snap, now, true)

		assert.Equal(t, 1, tr.StreakDays)
		assert.True(t, tr.Broken)
		assert.False(t, tr.FreezeConsumed)
	})

	t.Run("single day coverage ignores longer gaps", func(t *testing.T) {
		t.Parallel()
		now := last.AddDate(0, 0, 4)
		snap := snapshotWithStreak(9, last)
		snap.StreakFreezes = 1
		expires := now.Add(time.Hour)
		snap.FreezeExpiresAt = &expires

		tr := AdvanceStreak(snap, now, false)

		assert.Equal(t, 1, tr.StreakDays)
		assert.True(t, tr.Broken)
		assert.False(t, tr.FreezeConsumed)
	})

	t.Run("any gap coverage absorbs longer gaps", func(t *testing.T) {
		t.Parallel()
		now := last.AddDate(0, 0, 4)
		snap := snapshotWithStreak(9, last)
		snap.StreakFreezes = 1
		expires := now.Add(time.Hour)
		snap.FreezeExpiresAt = &expires

		tr := AdvanceStreak(snap, now, true)

		assert.Equal(t, 9, tr.StreakDays)
		assert.True(t, tr.FreezeConsumed)
	})
}

func TestAdvanceStreakMilestones(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		startStreak   int
		wantMilestone int
		wantBonus     int64
	}{
		{"reaching 3 days", 2, 3, 15},
		{"reaching 7 days", 6, 7, 35},
		{"reaching 14 days", 13, 14, 70},
		{"reaching 30 days", 29, 30, 150},
		{"reaching 365 days", 364, 365, 1825},
		{"day 8 is not a milestone", 7, 0, 0},
	}

	last := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			snap := snapshotWithStreak(tc.startStreak, last)
			tr := AdvanceStreak(snap, last.AddDate(0, 0, 1), true)

			assert.Equal(t, tc.startStreak+1, tr.StreakDays)
			assert.Equal(t, tc.wantMilestone, tr.Milestone)
			assert.Equal(t, tc.wantBonus, tr.XPBonus)
		})
	}
}

func TestAdvanceStreakDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	last := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snap := snapshotWithStreak(6, last)

	_ = AdvanceStreak(snap, last.AddDate(0, 0, 1), true)

	assert.Equal(t, 6, snap.StreakDays, "the state machine must not write to the snapshot")
}

func TestCalendarDaysBetween(t *testing.T) {
	t.Parallel()

	a := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 0, calendarDaysBetween(a, a.Add(-2*time.Hour)))
	assert.Equal(t, 1, calendarDaysBetween(a, a.Add(2*time.Minute)))
	assert.Equal(t, 2, calendarDaysBetween(a, a.AddDate(0, 0, 2)))
}
