// Package service orchestrates the progress engine: it validates incoming
// requests, builds ledger mutations, and exposes the operations the HTTP
// layer serves. It owns no snapshot state itself; the ledger's serializer
// and the stores do.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/domain/progression"
	"github.com/phrazzld/lingo-api/internal/events"
	"github.com/phrazzld/lingo-api/internal/ledger"
	"github.com/phrazzld/lingo-api/internal/store"
)

// ProgressConfig carries the tunables of the progress service.
type ProgressConfig struct {
	// FreezeCostCoins is the coin price of one streak freeze.
	FreezeCostCoins int64

	// FreezeWindow is how long an activated freeze stays consumable.
	FreezeWindow time.Duration

	// FreezeCoversAnyGap selects the freeze semantics: one freeze covers a
	// gap of any length (true) or only a single missed day (false).
	FreezeCoversAnyGap bool
}

// DefaultProgressConfig returns the default tunables.
func DefaultProgressConfig() ProgressConfig {
	return ProgressConfig{
		FreezeCostCoins:    200,
		FreezeWindow:       24 * time.Hour,
		FreezeCoversAnyGap: true,
	}
}

// LessonCompletion is the validated payload of a lesson-completion request.
type LessonCompletion struct {
	XPGained         int64
	LessonID         string
	TimeSpentMinutes int
	IsPerfect        bool
	WordsLearned     int

	// OccurredAt is the activity timestamp; zero means now.
	OccurredAt time.Time
}

// AnswerResult reports the combo state after one exercise answer.
type AnswerResult struct {
	Combo      int
	Multiplier float64
	BonusXP    int64
}

// ProgressService implements the progress ledger operations: lesson
// completions, the freeze economy, combo tracking, and snapshot reads.
type ProgressService struct {
	progressStore store.ProgressStore
	serializer    *ledger.Serializer
	cfg           ProgressConfig
	logger        *slog.Logger

	// Combo trackers are session state, keyed by user. They are never
	// persisted; entries are evicted by ResetCombo when a session ends and
	// the rest disappear with the process.
	comboMu sync.Mutex
	combos  map[uuid.UUID]*progression.ComboTracker
}

// NewProgressService creates a ProgressService.
func NewProgressService(
	progressStore store.ProgressStore,
	serializer *ledger.Serializer,
	cfg ProgressConfig,
	logger *slog.Logger,
) *ProgressService {
	if progressStore == nil || serializer == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progressStore and serializer cannot be nil for ProgressService")
	}
	return &ProgressService{
		progressStore: progressStore,
		serializer:    serializer,
		cfg:           cfg,
		logger:        logger.With(slog.String("component", "progress_service")),
		combos:        make(map[uuid.UUID]*progression.ComboTracker),
	}
}

// GetSnapshot returns the user's last committed snapshot. Users without any
// recorded activity get a fresh, unpersisted zero snapshot.
func (s *ProgressService) GetSnapshot(ctx context.Context, userID uuid.UUID) (*domain.ProgressSnapshot, error) {
	snap, err := s.progressStore.Get(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return domain.NewProgressSnapshot(userID), nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// CompleteLesson submits a lesson-completion mutation: the XP delta is
// applied, the streak machine advances on the activity timestamp, and any
// milestone bonus is credited in the same mutation.
//
// A negative XP delta is rejected synchronously with domain.ErrInvalidDelta
// before anything is enqueued. A timestamp earlier than the last recorded
// lesson still applies its XP but is a no-op on the streak machine.
func (s *ProgressService) CompleteLesson(
	ctx context.Context,
	userID uuid.UUID,
	lesson LessonCompletion,
) (*ledger.Receipt, error) {
	if lesson.XPGained < 0 {
		return nil, domain.ErrInvalidDelta
	}
	occurred := lesson.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	mutation := ledger.NewMutation(ledger.MutationLessonCompleted, userID,
		func(ctx context.Context, current *domain.ProgressSnapshot) (*ledger.Outcome, error) {
			snap := current
			if snap == nil {
				snap = domain.NewProgressSnapshot(userID)
			}

			oldLevel := progression.Level(snap.XPTotal)
			var evts []*events.ProgressEvent

			stale := snap.LastLessonAt != nil && occurred.Before(*snap.LastLessonAt)
			snap.XPTotal += lesson.XPGained
			gained := lesson.XPGained

			if stale {
				s.logger.Warn("streak machine skipped for stale timestamp",
					slog.String("user_id", userID.String()),
					slog.Time("occurred_at", occurred),
					slog.String("reason", domain.ErrStaleTimestamp.Error()))
			} else {
				prevStreak := snap.StreakDays
				transition := progression.AdvanceStreak(snap, occurred, s.cfg.FreezeCoversAnyGap)
				snap.StreakDays = transition.StreakDays
				snap.MaxStreak = transition.MaxStreak
				update := occurred
				snap.LastStreakUpdate = &update

				if transition.FreezeConsumed {
					snap.StreakFreezes--
					snap.FreezeExpiresAt = nil
					evts = append(evts, s.newEvent(events.EventFreezeConsumed, userID,
						events.FreezeConsumedPayload{
							StreakDays:       snap.StreakDays,
							FreezesRemaining: snap.StreakFreezes,
						}))
				}
				if transition.Broken {
					evts = append(evts, s.newEvent(events.EventStreakBroken, userID,
						events.StreakBrokenPayload{PreviousStreak: prevStreak, XPBonus: 0}))
				}
				if transition.Milestone > 0 {
					snap.XPTotal += transition.XPBonus
					gained += transition.XPBonus
					evts = append(evts, s.newEvent(events.EventStreakMilestone, userID,
						events.StreakMilestonePayload{
							StreakDays: transition.Milestone,
							XPBonus:    transition.XPBonus,
						}))
				}
			}

			if snap.LastLessonAt == nil || occurred.After(*snap.LastLessonAt) {
				last := occurred
				snap.LastLessonAt = &last
			}

			newLevel := progression.Level(snap.XPTotal)
			evts = append(evts, s.newEvent(events.EventXPChanged, userID,
				events.XPChangedPayload{Delta: gained, XPTotal: snap.XPTotal, Level: newLevel}))
			if newLevel > oldLevel {
				evts = append(evts, s.newEvent(events.EventLevelUp, userID,
					events.LevelUpPayload{OldLevel: oldLevel, NewLevel: newLevel}))
			}
			evts = append(evts, s.newEvent(events.EventLessonCompleted, userID,
				events.LessonCompletedPayload{
					XPGained:         lesson.XPGained,
					IsPerfect:        lesson.IsPerfect,
					WordsLearned:     lesson.WordsLearned,
					TimeSpentMinutes: lesson.TimeSpentMinutes,
				}))

			return &ledger.Outcome{Snapshot: snap, Events: compactEvents(evts)}, nil
		})

	return s.serializer.Submit(ctx, mutation)
}

// RecordAnswer feeds one exercise answer into the user's session combo
// tracker. A flat bonus earned by crossing a combo threshold is credited
// through the serializer without blocking the caller.
func (s *ProgressService) RecordAnswer(ctx context.Context, userID uuid.UUID, correct bool) AnswerResult {
	s.comboMu.Lock()
	tracker, ok := s.combos[userID]
	if !ok {
		tracker = progression.NewComboTracker()
		s.combos[userID] = tracker
	}

	if !correct {
		tracker.RecordWrong()
		result := AnswerResult{Combo: 0, Multiplier: tracker.Multiplier()}
		s.comboMu.Unlock()
		return result
	}

	bonus := tracker.RecordCorrect()
	result := AnswerResult{
		Combo:      tracker.Current(),
		Multiplier: tracker.Multiplier(),
		BonusXP:    bonus,
	}
	s.comboMu.Unlock()

	if bonus > 0 {
		if _, err := s.submitXPBonus(ctx, userID, bonus); err != nil {
			s.logger.Error("failed to submit combo bonus",
				slog.String("user_id", userID.String()),
				slog.Int64("bonus", bonus),
				slog.String("error", err.Error()))
		}
	}
	return result
}

// ResetCombo ends the user's session combo and evicts its tracker, keeping
// the map bounded by the number of currently active sessions.
func (s *ProgressService) ResetCombo(userID uuid.UUID) {
	s.comboMu.Lock()
	defer s.comboMu.Unlock()
	delete(s.combos, userID)
}

// PurchaseFreeze debits the freeze price and adds one freeze to the user's
// inventory. An insufficient balance is rejected synchronously before the
// mutation is enqueued, and checked again inside the mutation against the
// authoritative balance.
func (s *ProgressService) PurchaseFreeze(ctx context.Context, userID uuid.UUID) (*ledger.Receipt, error) {
	snap, err := s.GetSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.Coins < s.cfg.FreezeCostCoins {
		return nil, domain.ErrInsufficientBalance
	}

	cost := s.cfg.FreezeCostCoins
	mutation := ledger.NewMutation(ledger.MutationFreezePurchase, userID,
		func(ctx context.Context, current *domain.ProgressSnapshot) (*ledger.Outcome, error) {
			if current == nil || current.Coins < cost {
				return nil, domain.ErrInsufficientBalance
			}
			current.Coins -= cost
			current.StreakFreezes++
			return &ledger.Outcome{Snapshot: current}, nil
		})

	return s.serializer.Submit(ctx, mutation)
}

// ActivateFreeze opens a consumable window for one held freeze. The freeze
// inventory is decremented only when the freeze is consumed by the streak
// machine, not at activation.
func (s *ProgressService) ActivateFreeze(ctx context.Context, userID uuid.UUID) (*ledger.Receipt, error) {
	snap, err := s.GetSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if snap.StreakFreezes <= 0 {
		return nil, domain.ErrNoFreezeAvailable
	}
	if snap.HasActiveFreeze(now) {
		return nil, domain.ErrFreezeAlreadyActive
	}

	window := s.cfg.FreezeWindow
	mutation := ledger.NewMutation(ledger.MutationFreezeActivation, userID,
		func(ctx context.Context, current *domain.ProgressSnapshot) (*ledger.Outcome, error) {
			if current == nil || current.StreakFreezes <= 0 {
				return nil, domain.ErrNoFreezeAvailable
			}
			if current.HasActiveFreeze(time.Now().UTC()) {
				return nil, domain.ErrFreezeAlreadyActive
			}
			expires := time.Now().UTC().Add(window)
			current.FreezeExpiresAt = &expires
			return &ledger.Outcome{Snapshot: current}, nil
		})

	return s.serializer.Submit(ctx, mutation)
}

// submitXPBonus credits a flat XP amount outside the lesson flow.
func (s *ProgressService) submitXPBonus(ctx context.Context, userID uuid.UUID, bonus int64) (*ledger.Receipt, error) {
	mutation := ledger.NewMutation(ledger.MutationComboBonus, userID,
		func(ctx context.Context, current *domain.ProgressSnapshot) (*ledger.Outcome, error) {
			snap := current
			if snap == nil {
				snap = domain.NewProgressSnapshot(userID)
			}
			oldLevel := progression.Level(snap.XPTotal)
			snap.XPTotal += bonus
			newLevel := progression.Level(snap.XPTotal)

			evts := []*events.ProgressEvent{
				s.newEvent(events.EventXPChanged, userID,
					events.XPChangedPayload{Delta: bonus, XPTotal: snap.XPTotal, Level: newLevel}),
			}
			if newLevel > oldLevel {
				evts = append(evts, s.newEvent(events.EventLevelUp, userID,
					events.LevelUpPayload{OldLevel: oldLevel, NewLevel: newLevel}))
			}
			return &ledger.Outcome{Snapshot: snap, Events: compactEvents(evts)}, nil
		})

	return s.serializer.Submit(ctx, mutation)
}

// newEvent builds an event, logging and swallowing the (practically
// impossible) marshal failure so a mutation never fails over telemetry.
func (s *ProgressService) newEvent(t events.EventType, userID uuid.UUID, payload interface{}) *events.ProgressEvent {
	event, err := events.NewProgressEvent(t, userID, payload)
	if err != nil {
		s.logger.Error("failed to build event",
			slog.String("event_type", string(t)),
			slog.String("error", err.Error()))
		return nil
	}
	return event
}

// compactEvents drops nil entries produced by failed event construction.
func compactEvents(in []*events.ProgressEvent) []*events.ProgressEvent {
	out := in[:0]
	for _, e := range in {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
