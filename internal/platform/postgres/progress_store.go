package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/store"
)

// PostgresProgressStore implements store.ProgressStore on PostgreSQL.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a PostgreSQL implementation of the
// ProgressStore interface. If logger is nil, the default logger is used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// Get implements store.ProgressStore.Get.
func (s *PostgresProgressStore) Get(ctx context.Context, userID uuid.UUID) (*domain.ProgressSnapshot, error) {
	query := `
		SELECT user_id, xp_total, streak_days, max_streak,
		       last_lesson_at, last_streak_update,
		       coins, streak_freezes, freeze_expires_at,
		       challenge_success_rate, consecutive_successes, consecutive_failures,
		       total_challenges_attempted, total_challenges_completed,
		       preferred_difficulty, created_at, updated_at
		FROM user_progress
		WHERE user_id = $1`

	var snap domain.ProgressSnapshot
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&snap.UserID,
		&snap.XPTotal,
		&snap.StreakDays,
		&snap.MaxStreak,
		&snap.LastLessonAt,
		&snap.LastStreakUpdate,
		&snap.Coins,
		&snap.StreakFreezes,
		&snap.FreezeExpiresAt,
		&snap.ChallengeSuccessRate,
		&snap.ConsecutiveSuccesses,
		&snap.ConsecutiveFailures,
		&snap.TotalChallengesAttempted,
		&snap.TotalChallengesCompleted,
		&snap.PreferredDifficulty,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to get progress snapshot: %w", err)
	}
	return &snap, nil
}

// Save implements store.ProgressStore.Save with an upsert: the serializer
// does not distinguish a user's first mutation from subsequent ones.
func (s *PostgresProgressStore) Save(ctx context.Context, snap *domain.ProgressSnapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_progress (
			user_id, xp_total, streak_days, max_streak,
			last_lesson_at, last_streak_update,
			coins, streak_freezes, freeze_expires_at,
			challenge_success_rate, consecutive_successes, consecutive_failures,
			total_challenges_attempted, total_challenges_completed,
			preferred_difficulty, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (user_id) DO UPDATE SET
			xp_total = EXCLUDED.xp_total,
			streak_days = EXCLUDED.streak_days,
			max_streak = EXCLUDED.max_streak,
			last_lesson_at = EXCLUDED.last_lesson_at,
			last_streak_update = EXCLUDED.last_streak_update,
			coins = EXCLUDED.coins,
			streak_freezes = EXCLUDED.streak_freezes,
			freeze_expires_at = EXCLUDED.freeze_expires_at,
			challenge_success_rate = EXCLUDED.challenge_success_rate,
			consecutive_successes = EXCLUDED.consecutive_successes,
			consecutive_failures = EXCLUDED.consecutive_failures,
			total_challenges_attempted = EXCLUDED.total_challenges_attempted,
			total_challenges_completed = EXCLUDED.total_challenges_completed,
			preferred_difficulty = EXCLUDED.preferred_difficulty,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		snap.UserID,
		snap.XPTotal,
		snap.StreakDays,
		snap.MaxStreak,
		snap.LastLessonAt,
		snap.LastStreakUpdate,
		snap.Coins,
		snap.StreakFreezes,
		snap.FreezeExpiresAt,
		snap.ChallengeSuccessRate,
		snap.ConsecutiveSuccesses,
		snap.ConsecutiveFailures,
		snap.TotalChallengesAttempted,
		snap.TotalChallengesCompleted,
		snap.PreferredDifficulty,
		snap.CreatedAt,
		snap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress snapshot: %w", err)
	}

	s.logger.Debug("progress snapshot saved",
		slog.String("user_id", snap.UserID.String()),
		slog.Int64("xp_total", snap.XPTotal))
	return nil
}

// WithTx implements store.ProgressStore.WithTx.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{db: tx, logger: s.logger}
}
