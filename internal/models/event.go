// Package models defines the records persisted in typewriter history.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the system.
type EventType string

const (
	// Run events
	EventTypeRunStarted  EventType = "run.started"
	EventTypeRunFinished EventType = "run.finished"

	// Action events
	EventTypeActionCompleted   EventType = "action.completed"
	EventTypeActionInterrupted EventType = "action.interrupted"
	EventTypeActionFailed      EventType = "action.failed"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeRun EntityType = "run"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// ActionPayload is the payload for action.* events.
type ActionPayload struct {
	Seq        uint64 `json:"seq"`
	Kind       string `json:"kind"`
	Label      string `json:"label,omitempty"`
	Pass       int    `json:"pass"`
	Ticks      int    `json:"ticks"`
	Text       string `json:"text"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunStartedPayload is the payload for run.started events.
type RunStartedPayload struct {
	Script      string `json:"script"`
	Loop        bool   `json:"loop"`
	TypeSpeedMS int64  `json:"type_speed_ms"`
}

// RunFinishedPayload is the payload for run.finished events.
type RunFinishedPayload struct {
	Status RunStatus `json:"status"`
	Error  string    `json:"error,omitempty"`
}
