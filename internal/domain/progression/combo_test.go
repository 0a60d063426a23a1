package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComboTrackerMultiplierTiers(t *testing.T) {
	t.Parallel()

	tracker := NewComboTracker()
	expected := map[int]float64{
		0: 1.0, 1: 1.0, 2: 1.0,
		3: 1.2, 4: 1.2,
		5: 1.5, 9: 1.5,
		10: 2.0, 19: 2.0,
		20: 2.5, 35: 2.5,
	}

	for i := 0; i <= 35; i++ {
		if want, ok := expected[i]; ok {
			assert.Equal(t, want, tracker.Multiplier(), "combo %d", i)
		}
		tracker.RecordCorrect()
	}
}

func TestComboTrackerBonusPaidOncePerCrossing(t *testing.T) {
	t.Parallel()

	tracker := NewComboTracker()

	var bonuses []int64
	for i := 0; i < 21; i++ {
		if b := tracker.RecordCorrect(); b > 0 {
			bonuses = append(bonuses, b)
		}
	}

	assert.Equal(t, []int64{5, 10, 25, 50}, bonuses)
	assert.Equal(t, 21, tracker.Current())
}

func TestComboTrackerWrongAnswerResets(t *testing.T) {
	t.Parallel()

	tracker := NewComboTracker()
	for i := 0; i < 4; i++ {
		tracker.RecordCorrect()
	}
	assert.Equal(t, 4, tracker.Current())

	tracker.RecordWrong()
	assert.Equal(t, 0, tracker.Current())
	assert.Equal(t, 1.0, tracker.Multiplier())

	// Re-reaching a threshold after a reset pays the bonus again.
	tracker.RecordCorrect()
	tracker.RecordCorrect()
	assert.Equal(t, int64(5), tracker.RecordCorrect())
}

func TestComboTrackerReset(t *testing.T) {
	t.Parallel()

	tracker := NewComboTracker()
	for i := 0; i < 7; i++ {
		tracker.RecordCorrect()
	}

	tracker.Reset()
	assert.Equal(t, 0, tracker.Current())
}
