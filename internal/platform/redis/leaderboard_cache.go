// Package redis implements the weekly XP leaderboard cache on Redis sorted
// sets. The cache is fed from engine events and is best-effort: losing it
// loses nothing authoritative, the ledger remains the source of truth.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLeaderboardEmpty is returned when the current week has no entries.
var ErrLeaderboardEmpty = errors.New("leaderboard is empty")

// keyTTL keeps the previous week around briefly for end-of-week views, then
// lets Redis reclaim it.
const keyTTL = 14 * 24 * time.Hour

// LeaderboardEntry is a single ranked row of the weekly XP leaderboard.
type LeaderboardEntry struct {
	UserID uuid.UUID `json:"user_id"`
	XP     int64     `json:"xp"`
	Rank   int64     `json:"rank"`
}

// LeaderboardCache maintains per-ISO-week sorted sets of XP gained.
type LeaderboardCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLeaderboardCache creates a leaderboard cache over the given client.
func NewLeaderboardCache(client *redis.Client, logger *slog.Logger) *LeaderboardCache {
	if client == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("client cannot be nil for LeaderboardCache")
	}
	return &LeaderboardCache{
		client: client,
		logger: logger.With(slog.String("component", "leaderboard_cache")),
	}
}

// AddXP folds an XP delta into the current week's sorted set.
func (c *LeaderboardCache) AddXP(ctx context.Context, userID uuid.UUID, delta int64, now time.Time) error {
	key := weekKey(now)

	pipe := c.client.TxPipeline()
	pipe.ZIncrBy(ctx, key, float64(delta), userID.String())
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add xp to leaderboard: %w", err)
	}
	return nil
}

// Top returns up to limit entries starting at offset, ranked by XP gained
// this week. Returns ErrLeaderboardEmpty when the week has no entries.
func (c *LeaderboardCache) Top(ctx context.Context, limit, offset int64, now time.Time) ([]LeaderboardEntry, error) {
	key := weekKey(now)

	members, err := c.client.ZRevRangeWithScores(ctx, key, offset, offset+limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(members) == 0 {
		return nil, ErrLeaderboardEmpty
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, member := range members {
		id, err := uuid.Parse(member.Member.(string))
		if err != nil {
			c.logger.Warn("skipping malformed leaderboard member",
				slog.Any("member", member.Member))
			continue
		}
		entries = append(entries, LeaderboardEntry{
			UserID: id,
			XP:     int64(member.Score),
			Rank:   offset + int64(i) + 1,
		})
	}
	return entries, nil
}

// Rank returns a user's 1-based rank for the current week, or 0 when the
// user has no entry.
func (c *LeaderboardCache) Rank(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, weekKey(now), userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read leaderboard rank: %w", err)
	}
	return rank + 1, nil
}

// weekKey returns the sorted-set key for the ISO week containing t.
func weekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("leaderboard:weekly:%d-W%02d", year, week)
}
