package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		xp       int64
		expected int
	}{
		{"zero xp is level 0", 0, 0},
		{"negative xp is level 0", -50, 0},
		{"just below first boundary", 99, 0},
		{"first boundary", 100, 1},
		{"between boundaries", 150, 1},
		{"just below second boundary", 399, 1},
		{"second boundary", 400, 2},
		{"third boundary", 900, 3},
		{"fourth boundary", 1600, 4},
		{"fifth boundary", 2500, 5},
		{"large xp", 1000000, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, Level(tc.xp))
		})
	}
}

func TestLevelBoundariesAreConsistent(t *testing.T) {
	t.Parallel()

	// At every boundary the level increments exactly there: one XP below the
	// threshold stays on the previous level.
	for level := 1; level <= 50; level++ {
		threshold := XPForLevel(level)
		assert.Equal(t, level, Level(threshold), "at threshold for level %d", level)
		assert.Equal(t, level-1, Level(threshold-1), "just below threshold for level %d", level)
	}
}

func TestXPForLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), XPForLevel(0))
	assert.Equal(t, int64(0), XPForLevel(-3))
	assert.Equal(t, int64(100), XPForLevel(1))
	assert.Equal(t, int64(400), XPForLevel(2))
	assert.Equal(t, int64(902500), XPForLevel(95))
}

func TestProgressToNextLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		xp       int64
		expected float64
	}{
		{"zero at level start", 0, 0},
		{"zero at level 1 boundary", 100, 0},
		{"zero at level 2 boundary", 400, 0},
		{"one sixth into level 1", 150, 1.0 / 6.0},
		{"half way to level 1", 50, 0.5},
		{"negative xp clamps to zero", -10, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.expected, ProgressToNextLevel(tc.xp), 1e-9)
		})
	}
}
