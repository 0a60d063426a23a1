package progression

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSelectDifficulty(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		successRate float64
		successes   int
		failures    int
		expected    domain.Difficulty
	}{
		{"sustained excellence is epic", 0.95, 6, 0, domain.DifficultyEpic},
		{"epic needs the success run", 0.95, 4, 0, domain.DifficultyHard},
		{"strong performance is hard", 0.85, 3, 0, domain.DifficultyHard},
		{"strong rate without run is medium", 0.85, 2, 0, domain.DifficultyMedium},
		{"low rate is easy", 0.30, 0, 1, domain.DifficultyEasy},
		{"failure run is easy regardless of rate", 0.95, 0, 3, domain.DifficultyEasy},
		{"mediocre rate with failures is easy", 0.55, 0, 2, domain.DifficultyEasy},
		{"mediocre rate without failures is medium", 0.55, 1, 0, domain.DifficultyMedium},
		{"middle of the road is medium", 0.70, 1, 0, domain.DifficultyMedium},
		{"boundary 0.40 is not easy", 0.40, 0, 0, domain.DifficultyMedium},
		{"boundary 0.90 with run is epic", 0.90, 5, 0, domain.DifficultyEpic},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SelectDifficulty(tc.successRate, tc.successes, tc.failures)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestApplyOutcomeSuccess(t *testing.T) {
	t.Parallel()

	snap := domain.NewProgressSnapshot(uuid.New())
	snap.TotalChallengesAttempted = 3
	snap.TotalChallengesCompleted = 2
	snap.ConsecutiveFailures = 1
	snap.ChallengeSuccessRate = 2.0 / 3.0

	next := ApplyOutcome(snap, true)

	assert.Equal(t, 4, next.TotalChallengesAttempted)
	assert.Equal(t, 3, next.TotalChallengesCompleted)
	assert.Equal(t, 1, next.ConsecutiveSuccesses)
	assert.Equal(t, 0, next.ConsecutiveFailures, "a success clears the failure run")
	assert.InDelta(t, 0.75, next.ChallengeSuccessRate, 1e-9)
}

func TestApplyOutcomeFailure(t *testing.T) {
	t.Parallel()

	snap := domain.NewProgressSnapshot(uuid.New())
	snap.TotalChallengesAttempted = 4
	snap.TotalChallengesCompleted = 4
	snap.ConsecutiveSuccesses = 4
	snap.ChallengeSuccessRate = 1.0

	next := ApplyOutcome(snap, false)

	assert.Equal(t, 5, next.TotalChallengesAttempted)
	assert.Equal(t, 4, next.TotalChallengesCompleted)
	assert.Equal(t, 0, next.ConsecutiveSuccesses)
	assert.Equal(t, 1, next.ConsecutiveFailures)
	assert.InDelta(t, 0.8, next.ChallengeSuccessRate, 1e-9)
	assert.NoError(t, next.Validate())
}

func TestApplyOutcomeUpdatesPreferredDifficulty(t *testing.T) {
	t.Parallel()

	snap := domain.NewProgressSnapshot(uuid.New())
	snap.TotalChallengesAttempted = 9
	snap.TotalChallengesCompleted = 9
	snap.ConsecutiveSuccesses = 4
	snap.ChallengeSuccessRate = 1.0

	next := ApplyOutcome(snap, true)

	assert.Equal(t, domain.DifficultyEpic, next.PreferredDifficulty)
}

func TestApplyOutcomeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	snap := domain.NewProgressSnapshot(uuid.New())
	_ = ApplyOutcome(snap, true)

	assert.Equal(t, 0, snap.TotalChallengesAttempted)
	assert.Equal(t, 0, snap.ConsecutiveSuccesses)
}
