package models

import (
	"strings"
	"time"
)

// RunStatus describes how a typewriter run ended.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusStopped   RunStatus = "stopped"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one Start of a typewriter, usually driven by a script.
type Run struct {
	ID         string        `json:"id"`
	Script     string        `json:"script"`
	Loop       bool          `json:"loop"`
	TypeSpeed  time.Duration `json:"type_speed"`
	Status     RunStatus     `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Actions    int           `json:"actions"`
	Error      string        `json:"error,omitempty"`
}

// Validate checks if the run is valid.
func (r *Run) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(r.Script) == "" {
		validation.AddMessage("script", "script is required")
	}
	if r.TypeSpeed < 0 {
		validation.AddMessage("type_speed", "type_speed must not be negative")
	}
	switch r.Status {
	case "", RunStatusRunning, RunStatusCompleted, RunStatusStopped, RunStatusFailed:
	default:
		validation.AddMessage("status", "unknown run status")
	}
	return validation.Err()
}
