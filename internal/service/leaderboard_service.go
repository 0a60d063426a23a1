package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/events"
	"github.com/phrazzld/lingo-api/internal/platform/redis"
)

// LeaderboardService folds XP change events into the weekly Redis
// leaderboard and serves ranked views of it.
type LeaderboardService struct {
	cache  *redis.LeaderboardCache
	logger *slog.Logger
}

// NewLeaderboardService creates a LeaderboardService.
func NewLeaderboardService(cache *redis.LeaderboardCache, logger *slog.Logger) *LeaderboardService {
	if cache == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cache cannot be nil for LeaderboardService")
	}
	return &LeaderboardService{
		cache:  cache,
		logger: logger.With(slog.String("component", "leaderboard_service")),
	}
}

var _ events.EventHandler = (*LeaderboardService)(nil)

// HandleEvent implements events.EventHandler. Positive XP deltas are added
// to the current week's leaderboard; cache failures are logged but never
// propagated, the leaderboard is best-effort.
func (s *LeaderboardService) HandleEvent(ctx context.Context, event *events.ProgressEvent) error {
	if event.Type != events.EventXPChanged {
		return nil
	}

	var payload events.XPChangedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal xp payload: %w", err)
	}
	if payload.Delta <= 0 {
		return nil
	}

	if err := s.cache.AddXP(ctx, event.UserID, payload.Delta, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update leaderboard",
			slog.String("user_id", event.UserID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// Top returns up to limit ranked entries for the current week, starting at
// offset. An empty week yields an empty slice, not an error.
func (s *LeaderboardService) Top(ctx context.Context, limit, offset int64) ([]redis.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.cache.Top(ctx, limit, offset, time.Now().UTC())
	if errors.Is(err, redis.ErrLeaderboardEmpty) {
		return []redis.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Rank returns the user's 1-based rank for the current week, or 0 when the
// user has gained no XP this week.
func (s *LeaderboardService) Rank(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.cache.Rank(ctx, userID, time.Now().UTC())
}
