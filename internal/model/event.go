package model

import (
	"time"
)

// EventType represents the type of platform event published to the broker.
type EventType string

const (
	EventTypeTurnCompleted EventType = "turn_completed"
	EventTypeTurnFailed    EventType = "turn_failed"
	EventTypeToolExecuted  EventType = "tool_executed"
)

// Event is a best-effort notification about chat activity. Consumers
// (analytics, notification services) subscribe to these; publishing never
// blocks or fails a turn.
type Event struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	UserID         string         `json:"user_id"`
	ConversationID int64          `json:"conversation_id,omitempty"`
	Tool           string         `json:"tool,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
