package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/domain/progression"
	"github.com/phrazzld/lingo-api/internal/events"
	"github.com/phrazzld/lingo-api/internal/ledger"
	"github.com/phrazzld/lingo-api/internal/store"
)

// challengeTemplate is the base definition of one daily challenge before
// difficulty and weekend scaling.
type challengeTemplate struct {
	ctype      domain.ChallengeType
	baseTarget int
	baseCoins  int
	baseXP     int
}

// dailyCatalog is the challenge batch generated at each period rollover.
var dailyCatalog = []challengeTemplate{
	{domain.ChallengeEarnXP, 50, 25, 15},
	{domain.ChallengeCompleteLessons, 3, 20, 10},
	{domain.ChallengePerfectLessons, 1, 30, 20},
	{domain.ChallengeLearnWords, 10, 15, 10},
	{domain.ChallengePracticeMinutes, 15, 20, 10},
}

// ChallengeProgressResult is returned after reporting challenge progress.
type ChallengeProgressResult struct {
	CurrentProgress int
	IsCompleted     bool
	CoinReward      int
	XPReward        int
	CoinsRemaining  int64
}

// ChallengeService generates daily challenges at the adaptively selected
// difficulty, advances them from reported or observed activity, and grants
// completion rewards through the update serializer.
//
// It also implements events.EventHandler: lesson-completion events advance
// the user's active challenges automatically.
type ChallengeService struct {
	challengeStore store.ChallengeStore
	progressStore  store.ProgressStore
	serializer     *ledger.Serializer
	// db may be nil in tests; challenge updates then run without a
	// transaction and without row locking.
	db     *sql.DB
	logger *slog.Logger
}

// NewChallengeService creates a ChallengeService.
func NewChallengeService(
	challengeStore store.ChallengeStore,
	progressStore store.ProgressStore,
	serializer *ledger.Serializer,
	db *sql.DB,
	logger *slog.Logger,
) *ChallengeService {
	if challengeStore == nil || progressStore == nil || serializer == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("stores and serializer cannot be nil for ChallengeService")
	}
	return &ChallengeService{
		challengeStore: challengeStore,
		progressStore:  progressStore,
		serializer:     serializer,
		db:             db,
		logger:         logger.With(slog.String("component", "challenge_service")),
	}
}

var _ events.EventHandler = (*ChallengeService)(nil)

// GetDaily returns the user's challenges for the current period, generating
// a fresh batch when none exist.
func (s *ChallengeService) GetDaily(ctx context.Context, userID uuid.UUID) ([]*domain.Challenge, error) {
	now := time.Now().UTC()

	active, err := s.challengeStore.GetActive(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load active challenges: %w", err)
	}
	if len(active) > 0 {
		return active, nil
	}

	snap, err := s.progressStore.Get(ctx, userID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		snap = domain.NewProgressSnapshot(userID)
	}

	batch := s.generateBatch(userID, snap, now)
	if err := s.challengeStore.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to persist challenge batch: %w", err)
	}

	s.logger.Info("generated daily challenge batch",
		slog.String("user_id", userID.String()),
		slog.String("difficulty", string(batch[0].Difficulty)),
		slog.Int("count", len(batch)))
	return batch, nil
}

// generateBatch builds one challenge per catalog entry, scaled by the
// difficulty selected from the user's rolling performance and, for target
// only, never by the weekend bonus.
func (s *ChallengeService) generateBatch(
	userID uuid.UUID,
	snap *domain.ProgressSnapshot,
	now time.Time,
) []*domain.Challenge {
	// Users with no challenge history start at the snapshot default instead
	// of being dropped to easy by their empty success rate.
	difficulty := snap.PreferredDifficulty
	if snap.TotalChallengesAttempted > 0 {
		difficulty = progression.SelectDifficulty(
			snap.ChallengeSuccessRate,
			snap.ConsecutiveSuccesses,
			snap.ConsecutiveFailures,
		)
	}
	weekend := progression.IsWeekend(now)
	expires := endOfDay(now)

	batch := make([]*domain.Challenge, 0, len(dailyCatalog))
	for _, tpl := range dailyCatalog {
		batch = append(batch, &domain.Challenge{
			ID:             uuid.New(),
			UserID:         userID,
			Type:           tpl.ctype,
			Difficulty:     difficulty,
			TargetValue:    progression.ScaleTarget(tpl.baseTarget, difficulty),
			CoinReward:     progression.ScaleReward(tpl.baseCoins, difficulty, weekend),
			XPReward:       progression.ScaleReward(tpl.baseXP, difficulty, weekend),
			IsWeekendBonus: weekend,
			ExpiresAt:      expires,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return batch
}

// UpdateProgress applies an explicit progress increment to a challenge.
// Completion is idempotent: once a challenge is completed, further updates
// return its final state without granting the reward again.
func (s *ChallengeService) UpdateProgress(
	ctx context.Context,
	userID, challengeID uuid.UUID,
	increment int,
) (*ChallengeProgressResult, error) {
	if increment <= 0 {
		return nil, domain.ErrInvalidIncrement
	}
	now := time.Now().UTC()

	var challenge *domain.Challenge
	var completed bool
	err := s.inTx(ctx, func(cs store.ChallengeStore) error {
		var err error
		challenge, err = cs.GetForUpdate(ctx, challengeID)
		if err != nil {
			return err
		}
		if challenge.UserID != userID {
			return ErrChallengeNotOwned
		}
		if challenge.Expired(now) {
			return domain.ErrChallengeExpired
		}
		if challenge.IsCompleted {
			return nil
		}
		completed = challenge.Advance(increment, now)
		return cs.Update(ctx, challenge)
	})
	if err != nil {
		return nil, err
	}

	result := &ChallengeProgressResult{
		CurrentProgress: challenge.CurrentProgress,
		IsCompleted:     challenge.IsCompleted,
		CoinReward:      challenge.CoinReward,
		XPReward:        challenge.XPReward,
	}

	if completed {
		receipt, err := s.grantReward(ctx, challenge)
		if err != nil {
			return nil, fmt.Errorf("failed to submit challenge reward: %w", err)
		}
		res, err := receipt.Wait(ctx)
		if err != nil {
			return nil, err
		}
		if res.Err != nil {
			return nil, res.Err
		}
		result.CoinsRemaining = res.Snapshot.Coins
		return result, nil
	}

	snap, err := s.progressStore.Get(ctx, userID)
	if err == nil {
		result.CoinsRemaining = snap.Coins
	} else if !store.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return result, nil
}

// HandleEvent implements events.EventHandler. Lesson-completion events
// advance the user's active challenges; rewards for challenges completed
// this way are submitted without waiting, since the handler runs on the
// serializer's consumer goroutine and must never block on its own queue.
func (s *ChallengeService) HandleEvent(ctx context.Context, event *events.ProgressEvent) error {
	if event.Type != events.EventLessonCompleted {
		return nil
	}

	var lesson events.LessonCompletedPayload
	if err := event.UnmarshalPayload(&lesson); err != nil {
		return fmt.Errorf("failed to unmarshal lesson payload: %w", err)
	}

	now := time.Now().UTC()
	active, err := s.challengeStore.GetActive(ctx, event.UserID, now)
	if err != nil {
		return fmt.Errorf("failed to load active challenges: %w", err)
	}

	for _, challenge := range active {
		if challenge.IsCompleted {
			continue
		}
		increment := incrementFor(challenge.Type, lesson)
		if increment <= 0 {
			continue
		}

		var completed bool
		err := s.inTx(ctx, func(cs store.ChallengeStore) error {
			locked, err := cs.GetForUpdate(ctx, challenge.ID)
			if err != nil {
				return err
			}
			if locked.IsCompleted {
				return nil
			}
			completed = locked.Advance(increment, now)
			challenge = locked
			return cs.Update(ctx, locked)
		})
		if err != nil {
			s.logger.Error("failed to auto-advance challenge",
				slog.String("challenge_id", challenge.ID.String()),
				slog.String("error", err.Error()))
			continue
		}

		if completed {
			if _, err := s.grantReward(ctx, challenge); err != nil {
				s.logger.Error("failed to submit reward for auto-completed challenge",
					slog.String("challenge_id", challenge.ID.String()),
					slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

// RecordExpiredFailures folds every expired, incomplete challenge into its
// owner's performance counters as a failure, then deletes the expired rows.
// Called by the daily rollover job.
func (s *ChallengeService) RecordExpiredFailures(ctx context.Context) error {
	now := time.Now().UTC()

	expired, err := s.challengeStore.GetExpiredIncomplete(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to load expired challenges: %w", err)
	}

	for _, challenge := range expired {
		userID := challenge.UserID
		mutation := ledger.NewMutation(ledger.MutationChallengeOutcome, userID,
			func(ctx context.Context, current *domain.ProgressSnapshot) (*ledger.Outcome, error) {
				snap := current
				if snap == nil {
					snap = domain.NewProgressSnapshot(userID)
				}
				return &ledger.Outcome{Snapshot: progression.ApplyOutcome(snap, false)}, nil
			})

		receipt, err := s.serializer.Submit(ctx, mutation)
		if err != nil {
			return fmt.Errorf("failed to submit challenge failure: %w", err)
		}
		if res, err := receipt.Wait(ctx); err != nil {
			return err
		} else if res.Err != nil {
			s.logger.Error("failed to record challenge failure",
				slog.String("user_id", userID.String()),
				slog.String("error", res.Err.Error()))
		}
	}

	deleted, err := s.challengeStore.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to delete expired challenges: %w", err)
	}
	if deleted > 0 || len(expired) > 0 {
		s.logger.Info("challenge rollover complete",
			slog.Int("failures_recorded", len(expired)),
			slog.Int64("deleted", deleted))
	}
	return nil
}

// grantReward submits the reward mutation for a completed challenge:
// XP and coins are credited and the completion is recorded as a success in
// the performance model.
func (s *ChallengeService) grantReward(ctx context.Context, challenge *domain.Challenge) (*ledger.Receipt, error) {
	userID := challenge.UserID
	xp := int64(challenge.XPReward)
	coins := int64(challenge.CoinReward)
	challengeID := challenge.ID

	mutation := ledger.NewMutation(ledger.MutationChallengeReward, userID,
		func(ctx context.Context, current *domain.ProgressSnapshot) (*ledger.Outcome, error) {
			snap := current
			if snap == nil {
				snap = domain.NewProgressSnapshot(userID)
			}
			snap = progression.ApplyOutcome(snap, true)

			oldLevel := progression.Level(snap.XPTotal)
			snap.XPTotal += xp
			snap.Coins += coins
			newLevel := progression.Level(snap.XPTotal)

			var evts []*events.ProgressEvent
			if event, err := events.NewProgressEvent(events.EventChallengeCompleted, userID,
				events.ChallengeCompletedPayload{
					ChallengeID: challengeID,
					XPReward:    int(xp),
					CoinReward:  int(coins),
				}); err == nil {
				evts = append(evts, event)
			}
			if event, err := events.NewProgressEvent(events.EventXPChanged, userID,
				events.XPChangedPayload{Delta: xp, XPTotal: snap.XPTotal, Level: newLevel}); err == nil {
				evts = append(evts, event)
			}
			if newLevel > oldLevel {
				if event, err := events.NewProgressEvent(events.EventLevelUp, userID,
					events.LevelUpPayload{OldLevel: oldLevel, NewLevel: newLevel}); err == nil {
					evts = append(evts, event)
				}
			}
			return &ledger.Outcome{Snapshot: snap, Events: evts}, nil
		})

	return s.serializer.Submit(ctx, mutation)
}

// inTx runs fn against a transaction-bound challenge store when a database
// handle is available, and directly against the base store otherwise.
func (s *ChallengeService) inTx(ctx context.Context, fn func(cs store.ChallengeStore) error) error {
	if s.db == nil {
		return fn(s.challengeStore)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(s.challengeStore.WithTx(tx))
	})
}

// incrementFor maps a lesson completion onto the progress increment for one
// challenge type.
func incrementFor(t domain.ChallengeType, lesson events.LessonCompletedPayload) int {
	switch t {
	case domain.ChallengeEarnXP:
		return int(lesson.XPGained)
	case domain.ChallengeCompleteLessons:
		return 1
	case domain.ChallengePerfectLessons:
		if lesson.IsPerfect {
			return 1
		}
		return 0
	case domain.ChallengeLearnWords:
		return lesson.WordsLearned
	case domain.ChallengePracticeMinutes:
		return lesson.TimeSpentMinutes
	default:
		return 0
	}
}

// endOfDay returns the first instant of the next UTC calendar day.
func endOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
