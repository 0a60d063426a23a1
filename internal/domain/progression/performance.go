package progression

import "github.com/phrazzld/lingo-api/internal/domain"

// ApplyOutcome folds one challenge outcome into the rolling performance
// counters, following the immutable pattern: the input snapshot is not
// modified and an updated copy is returned.
//
// Every outcome increments the attempt total. A success additionally
// increments the completion total and the consecutive-success counter,
// zeroing consecutive failures; a failure does the inverse. The success rate
// is recomputed as completed / attempted.
func ApplyOutcome(snap *domain.ProgressSnapshot, success bool) *domain.ProgressSnapshot {
	next := snap.Clone()

	next.TotalChallengesAttempted++
	if success {
		next.TotalChallengesCompleted++
		next.ConsecutiveSuccesses++
		next.ConsecutiveFailures = 0
	} else {
		next.ConsecutiveFailures++
		next.ConsecutiveSuccesses = 0
	}
	next.ChallengeSuccessRate = float64(next.TotalChallengesCompleted) /
		float64(next.TotalChallengesAttempted)

	next.PreferredDifficulty = SelectDifficulty(
		next.ChallengeSuccessRate,
		next.ConsecutiveSuccesses,
		next.ConsecutiveFailures,
	)
	return next
}

// SelectDifficulty picks the challenge difficulty tier for the next
// generation cycle from the rolling performance counters.
//
// Sustained high performance escalates toward epic, while low success rates
// or failure runs fall back to easy. Everything in between gets medium.
func SelectDifficulty(successRate float64, consecutiveSuccesses, consecutiveFailures int) domain.Difficulty {
	switch {
	case successRate >= 0.90 && consecutiveSuccesses >= 5:
		return domain.DifficultyEpic
	case successRate >= 0.80 && consecutiveSuccesses >= 3:
		return domain.DifficultyHard
	case successRate < 0.40 || consecutiveFailures >= 3:
		return domain.DifficultyEasy
	case successRate < 0.60 && consecutiveFailures >= 2:
		return domain.DifficultyEasy
	default:
		return domain.DifficultyMedium
	}
}
