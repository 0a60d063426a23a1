// Package events defines the typed events the progress engine emits after a
// mutation commits, together with an in-memory emitter. Consumers either
// register a handler or subscribe to a channel; nothing in here knows about
// any UI callback mechanism.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened to a user's progress.
type EventType string

// Engine event types.
const (
	EventXPChanged          EventType = "xp_changed"
	EventLevelUp            EventType = "level_up"
	EventLessonCompleted    EventType = "lesson_completed"
	EventStreakMilestone    EventType = "streak_milestone"
	EventStreakBroken       EventType = "streak_broken"
	EventFreezeConsumed     EventType = "freeze_consumed"
	EventChallengeCompleted EventType = "challenge_completed"
)

// ProgressEvent is an engine event with a JSON payload specific to its type.
type ProgressEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	UserID    uuid.UUID       `json:"user_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewProgressEvent creates an event of the given type, serializing payload
// to JSON.
func NewProgressEvent(t EventType, userID uuid.UUID, payload interface{}) (*ProgressEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &ProgressEvent{
		ID:        uuid.New(),
		Type:      t,
		UserID:    userID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ProgressEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// XPChangedPayload accompanies EventXPChanged.
type XPChangedPayload struct {
	Delta   int64 `json:"delta"`
	XPTotal int64 `json:"xp_total"`
	Level   int   `json:"level"`
}

// LevelUpPayload accompanies EventLevelUp.
type LevelUpPayload struct {
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
}

// LessonCompletedPayload accompanies EventLessonCompleted and carries the
// activity metrics that drive challenge auto-advancement.
type LessonCompletedPayload struct {
	XPGained         int64 `json:"xp_gained"`
	IsPerfect        bool  `json:"is_perfect"`
	WordsLearned     int   `json:"words_learned"`
	TimeSpentMinutes int   `json:"time_spent_minutes"`
}

// StreakMilestonePayload accompanies EventStreakMilestone. XPBonus is always
// non-zero; a broken streak is signalled separately with EventStreakBroken.
type StreakMilestonePayload struct {
	StreakDays int   `json:"streak_days"`
	XPBonus    int64 `json:"xp_bonus"`
}

// StreakBrokenPayload accompanies EventStreakBroken with XPBonus fixed at 0.
type StreakBrokenPayload struct {
	PreviousStreak int   `json:"previous_streak"`
	XPBonus        int64 `json:"xp_bonus"`
}

// FreezeConsumedPayload accompanies EventFreezeConsumed.
type FreezeConsumedPayload struct {
	StreakDays       int `json:"streak_days"`
	FreezesRemaining int `json:"freezes_remaining"`
}

// ChallengeCompletedPayload accompanies EventChallengeCompleted.
type ChallengeCompletedPayload struct {
	ChallengeID uuid.UUID `json:"challenge_id"`
	XPReward    int       `json:"xp_reward"`
	CoinReward  int       `json:"coin_reward"`
}

// EventHandler is implemented by components that react to engine events,
// e.g. the challenge auto-advancer and the leaderboard updater.
type EventHandler interface {
	// HandleEvent processes the event. Errors are logged by the emitter and
	// do not stop delivery to other handlers.
	HandleEvent(ctx context.Context, event *ProgressEvent) error
}

// EventHandlerFunc adapts a plain function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *ProgressEvent) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *ProgressEvent) error {
	return f(ctx, event)
}

// EventEmitter is implemented by components that publish engine events.
type EventEmitter interface {
	// EmitEvent publishes the event to all registered handlers and
	// subscribed channels.
	EmitEvent(ctx context.Context, event *ProgressEvent) error
}
