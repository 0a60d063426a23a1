package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/store"
)

// challengeColumns is the shared select list for challenge rows.
const challengeColumns = `
	id, user_id, type, difficulty, target_value, current_progress,
	coin_reward, xp_reward, is_completed, is_weekend_bonus,
	expires_at, created_at, updated_at`

// PostgresChallengeStore implements store.ChallengeStore on PostgreSQL.
type PostgresChallengeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChallengeStore creates a PostgreSQL implementation of the
// ChallengeStore interface. If logger is nil, the default logger is used.
func NewPostgresChallengeStore(db store.DBTX, logger *slog.Logger) *PostgresChallengeStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChallengeStore{
		db:     db,
		logger: logger.With(slog.String("component", "challenge_store")),
	}
}

var _ store.ChallengeStore = (*PostgresChallengeStore)(nil)

// Get implements store.ChallengeStore.Get.
func (s *PostgresChallengeStore) Get(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	query := `SELECT` + challengeColumns + ` FROM challenges WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetForUpdate implements store.ChallengeStore.GetForUpdate. It must be
// called on a store bound to a transaction via WithTx.
func (s *PostgresChallengeStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	query := `SELECT` + challengeColumns + ` FROM challenges WHERE id = $1 FOR UPDATE`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetActive implements store.ChallengeStore.GetActive.
func (s *PostgresChallengeStore) GetActive(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.Challenge, error) {
	query := `SELECT` + challengeColumns + `
		FROM challenges
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query active challenges: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return s.scanAll(rows)
}

// CreateBatch implements store.ChallengeStore.CreateBatch.
func (s *PostgresChallengeStore) CreateBatch(ctx context.Context, challenges []*domain.Challenge) error {
	query := `
		INSERT INTO challenges (` + challengeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	for _, c := range challenges {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		_, err := s.db.ExecContext(ctx, query,
			c.ID, c.UserID, c.Type, c.Difficulty, c.TargetValue, c.CurrentProgress,
			c.CoinReward, c.XPReward, c.IsCompleted, c.IsWeekendBonus,
			c.ExpiresAt, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert challenge %s: %w", c.ID, err)
		}
	}

	s.logger.Debug("challenge batch created", slog.Int("count", len(challenges)))
	return nil
}

// Update implements store.ChallengeStore.Update.
func (s *PostgresChallengeStore) Update(ctx context.Context, c *domain.Challenge) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE challenges
		SET current_progress = $2, is_completed = $3, updated_at = $4
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, c.ID, c.CurrentProgress, c.IsCompleted, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return store.ErrChallengeNotFound
	}
	return nil
}

// GetExpiredIncomplete implements store.ChallengeStore.GetExpiredIncomplete.
func (s *PostgresChallengeStore) GetExpiredIncomplete(
	ctx context.Context,
	before time.Time,
) ([]*domain.Challenge, error) {
	query := `SELECT` + challengeColumns + `
		FROM challenges
		WHERE expires_at <= $1 AND NOT is_completed
		ORDER BY user_id, created_at`

	rows, err := s.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired challenges: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return s.scanAll(rows)
}

// DeleteExpired implements store.ChallengeStore.DeleteExpired.
func (s *PostgresChallengeStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired challenges: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected, nil
}

// WithTx implements store.ChallengeStore.WithTx.
func (s *PostgresChallengeStore) WithTx(tx *sql.Tx) store.ChallengeStore {
	return &PostgresChallengeStore{db: tx, logger: s.logger}
}

func (s *PostgresChallengeStore) scanOne(row *sql.Row) (*domain.Challenge, error) {
	var c domain.Challenge
	err := row.Scan(
		&c.ID, &c.UserID, &c.Type, &c.Difficulty, &c.TargetValue, &c.CurrentProgress,
		&c.CoinReward, &c.XPReward, &c.IsCompleted, &c.IsWeekendBonus,
		&c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to scan challenge: %w", err)
	}
	return &c, nil
}

func (s *PostgresChallengeStore) scanAll(rows *sql.Rows) ([]*domain.Challenge, error) {
	var out []*domain.Challenge
	for rows.Next() {
		var c domain.Challenge
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Type, &c.Difficulty, &c.TargetValue, &c.CurrentProgress,
			&c.CoinReward, &c.XPReward, &c.IsCompleted, &c.IsWeekendBonus,
			&c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge row: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate challenge rows: %w", err)
	}
	return out, nil
}
