// Package events records typewriter activity in the history log.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GustavoCosta/typewriter/internal/logging"
	"github.com/GustavoCosta/typewriter/internal/models"
	"github.com/GustavoCosta/typewriter/internal/typewriter"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// LogActionFinished records the outcome of one action run.
// Started events carry nothing worth keeping and are skipped.
func LogActionFinished(ctx context.Context, repo Repository, runID string, event typewriter.Event) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	var eventType models.EventType
	switch event.Status {
	case typewriter.EventStarted:
		return nil
	case typewriter.EventCompleted:
		eventType = models.EventTypeActionCompleted
	case typewriter.EventInterrupted:
		eventType = models.EventTypeActionInterrupted
	case typewriter.EventFailed:
		eventType = models.EventTypeActionFailed
	default:
		return fmt.Errorf("unknown event status %q", event.Status)
	}

	payload, err := json.Marshal(models.ActionPayload{
		Seq:        event.Seq,
		Kind:       string(event.Kind),
		Label:      event.Label,
		Pass:       event.Run,
		Ticks:      event.Ticks,
		Text:       event.Text,
		DurationMS: event.Duration.Milliseconds(),
		Error:      event.Error,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal action payload: %w", err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       eventType,
		EntityType: models.EntityTypeRun,
		EntityID:   runID,
		Timestamp:  event.Timestamp.Add(event.Duration),
		Payload:    payload,
	})
}

// LogRunStarted records the settings a run started with.
func LogRunStarted(ctx context.Context, repo Repository, run *models.Run) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if run == nil || run.ID == "" {
		return fmt.Errorf("run id is required")
	}

	payload, err := json.Marshal(models.RunStartedPayload{
		Script:      run.Script,
		Loop:        run.Loop,
		TypeSpeedMS: run.TypeSpeed.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal run payload: %w", err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       models.EventTypeRunStarted,
		EntityType: models.EntityTypeRun,
		EntityID:   run.ID,
		Timestamp:  run.StartedAt,
		Payload:    payload,
	})
}

// LogRunFinished records how a run ended.
func LogRunFinished(ctx context.Context, repo Repository, runID string, status models.RunStatus, runErr error) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	finished := models.RunFinishedPayload{Status: status}
	if runErr != nil {
		finished.Error = runErr.Error()
	}
	payload, err := json.Marshal(finished)
	if err != nil {
		return fmt.Errorf("failed to marshal run payload: %w", err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       models.EventTypeRunFinished,
		EntityType: models.EntityTypeRun,
		EntityID:   runID,
		Payload:    payload,
	})
}

// Recorder writes typewriter events for one run.
type Recorder struct {
	repo     Repository
	runID    string
	recorded int
}

// NewRecorder creates a Recorder for runID.
func NewRecorder(repo Repository, runID string) *Recorder {
	return &Recorder{repo: repo, runID: runID}
}

// Recorded returns how many finished actions have been written.
func (r *Recorder) Recorded() int {
	return r.recorded
}

// Run consumes events until ctx is done, then drains whatever is still
// buffered. Write failures are logged and do not stop recording.
func (r *Recorder) Run(ctx context.Context, events <-chan typewriter.Event) {
	logger := logging.Component("events")

	record := func(event typewriter.Event) {
		if event.Status == typewriter.EventStarted {
			return
		}
		// Writes use a fresh context so the final drain is not cancelled.
		if err := LogActionFinished(context.Background(), r.repo, r.runID, event); err != nil {
			logger.Warn().Err(err).Str("run_id", r.runID).Uint64("seq", event.Seq).Msg("failed to record action")
			return
		}
		r.recorded++
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			record(event)
		case <-ctx.Done():
			for {
				select {
				case event, ok := <-events:
					if !ok {
						return
					}
					record(event)
				default:
					return
				}
			}
		}
	}
}
