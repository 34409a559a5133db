// Package typewriter animates text on an element by draining a queue of timed
// actions one at a time.
package typewriter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GustavoCosta/typewriter/internal/logging"
	"github.com/rs/zerolog"
)

// Typewriter errors.
var (
	ErrAlreadyRunning = errors.New("typewriter already running")
	ErrNotRunning     = errors.New("typewriter not running")
	ErrStopped        = errors.New("typewriter stopped")
)

// DefaultTypeSpeed is the interval between ticks when none is configured.
const DefaultTypeSpeed = 50 * time.Millisecond

const eventBuffer = 100

// Options configures a Typewriter.
type Options struct {
	// TypeSpeed is the delay between revealed or removed runes.
	// Default: 50ms.
	TypeSpeed time.Duration

	// Loop re-enqueues every completed action so the queue never drains.
	// Default: false.
	Loop bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		TypeSpeed: DefaultTypeSpeed,
		Loop:      false,
	}
}

// EventStatus describes the point in an action's run an event reports.
type EventStatus string

const (
	EventStarted     EventStatus = "started"
	EventCompleted   EventStatus = "completed"
	EventInterrupted EventStatus = "interrupted"
	EventFailed      EventStatus = "failed"
)

// Event reports progress of a drain.
type Event struct {
	// Seq increases by one for every action run in this typewriter.
	Seq uint64

	Kind   ActionKind
	Label  string
	Status EventStatus

	// Run is how many times this action has been started, 1 on the first pass.
	Run int

	// Ticks and Text are set once the run has finished.
	Ticks int
	Text  string
	Error string

	Timestamp time.Time
	Duration  time.Duration
}

// Stats contains drain statistics.
type Stats struct {
	Running      bool
	StartedAt    *time.Time
	Completed    int64
	Interrupted  int64
	Failed       int64
	LastActionAt *time.Time
}

// Typewriter sequences actions against the element it owns.
type Typewriter struct {
	options Options
	element *Element
	logger  zerolog.Logger

	mu      sync.Mutex
	queue   []*Action
	running bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	seq     uint64

	statsMu sync.RWMutex
	stats   Stats
	events  chan Event
}

// New creates a Typewriter and mounts its element on container. A nil
// container leaves the element unattached and the options at their defaults.
func New(container Container, options Options) *Typewriter {
	t := &Typewriter{
		options: DefaultOptions(),
		logger:  logging.Component("typewriter"),
		events:  make(chan Event, eventBuffer),
	}
	if container == nil {
		t.element = NewElement("")
		return t
	}

	if options.TypeSpeed > 0 {
		t.options.TypeSpeed = options.TypeSpeed
	}
	t.options.Loop = options.Loop

	t.element = NewElement(ContainerClass)
	container.AppendChild(t.element)
	return t
}

// Options returns the configuration in effect.
func (t *Typewriter) Options() Options {
	return t.options
}

// Element returns the element the typewriter writes into.
func (t *Typewriter) Element() *Element {
	return t.element
}

// Enqueue appends an action to the end of the queue.
func (t *Typewriter) Enqueue(action *Action) *Typewriter {
	if action == nil {
		return t
	}
	t.mu.Lock()
	t.queue = append(t.queue, action)
	t.mu.Unlock()
	return t
}

// TypeText reveals text one rune per tick.
func (t *Typewriter) TypeText(text string) *Typewriter {
	return t.Enqueue(typeTextAction(text, t.options.TypeSpeed))
}

// PauseFor waits for duration before the next action.
func (t *Typewriter) PauseFor(duration time.Duration) *Typewriter {
	return t.Enqueue(pauseAction(duration))
}

// DeleteAll removes all content one rune per tick. A speed of zero or less
// uses the configured type speed.
func (t *Typewriter) DeleteAll(speed time.Duration) *Typewriter {
	if speed <= 0 {
		speed = t.options.TypeSpeed
	}
	return t.Enqueue(deleteAllAction(speed))
}

// DeleteChars removes runes from the end of the content, one per tick.
// It removes count+1 runes.
func (t *Typewriter) DeleteChars(count int) *Typewriter {
	return t.Enqueue(deleteCharsAction(count, t.options.TypeSpeed))
}

// Len returns the number of queued actions.
func (t *Typewriter) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// Running reports whether a drain is in progress.
func (t *Typewriter) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Start drains the queue, running each action only after the previous one
// completes. It returns nil once the queue is empty, which never happens in
// loop mode; ErrStopped after Stop; or the context error if ctx ends first.
func (t *Typewriter) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.running = true
	t.stopped = false
	t.cancel = cancel
	t.done = done
	queued := len(t.queue)
	t.mu.Unlock()

	now := time.Now().UTC()
	t.statsMu.Lock()
	t.stats.Running = true
	t.stats.StartedAt = &now
	t.statsMu.Unlock()

	t.logger.Debug().
		Int("queued", queued).
		Bool("loop", t.options.Loop).
		Dur("type_speed", t.options.TypeSpeed).
		Msg("typewriter starting")

	defer func() {
		cancel()
		t.mu.Lock()
		t.running = false
		t.cancel = nil
		t.mu.Unlock()

		t.statsMu.Lock()
		t.stats.Running = false
		t.statsMu.Unlock()
		close(done)
	}()

	passStart := time.Now()
	passRan := 0

	for {
		if runCtx.Err() != nil {
			return t.haltError(ctx)
		}

		action := t.dequeue()
		if action == nil {
			t.logger.Debug().Msg("typewriter queue drained")
			return nil
		}

		before := t.element.Text()
		if err := t.runAction(runCtx, action); err != nil {
			if runCtx.Err() == nil {
				return fmt.Errorf("%s action: %w", action.Kind(), err)
			}
			if t.element.Text() != before {
				t.element.SetText(before)
			}
			t.requeueFront(action)
			return t.haltError(ctx)
		}

		if t.options.Loop {
			t.Enqueue(action)

			// A looped pass made only of zero-tick actions never suspends;
			// hold it to one pass per type speed interval.
			passRan++
			if passRan >= t.Len() {
				if time.Since(passStart) < MinInterval {
					if err := t.idle(runCtx); err != nil {
						return t.haltError(ctx)
					}
				}
				passStart = time.Now()
				passRan = 0
			}
		}
	}
}

// idle waits one type speed interval or until ctx ends.
func (t *Typewriter) idle(ctx context.Context) error {
	interval := t.options.TypeSpeed
	if interval < MinInterval {
		interval = MinInterval
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (t *Typewriter) haltError(ctx context.Context) error {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if stopped {
		t.logger.Debug().Msg("typewriter stopped")
		return ErrStopped
	}
	return ctx.Err()
}

// Stop cancels a running drain and waits for it to return. The action that
// was interrupted goes back to the head of the queue and the element is
// restored to its text from before that action started, so the next Start
// replays it cleanly.
func (t *Typewriter) Stop() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return ErrNotRunning
	}
	t.stopped = true
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Wait blocks until no drain is in progress.
func (t *Typewriter) Wait() {
	t.mu.Lock()
	running := t.running
	done := t.done
	t.mu.Unlock()

	if running && done != nil {
		<-done
	}
}

// Stats returns current drain statistics.
func (t *Typewriter) Stats() Stats {
	t.statsMu.RLock()
	defer t.statsMu.RUnlock()
	return t.stats
}

// Events returns the channel of action events.
// Events are dropped when nobody keeps up with the channel.
func (t *Typewriter) Events() <-chan Event {
	return t.events
}

func (t *Typewriter) dequeue() *Action {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return nil
	}
	action := t.queue[0]
	t.queue[0] = nil
	t.queue = t.queue[1:]
	return action
}

func (t *Typewriter) requeueFront(action *Action) {
	t.mu.Lock()
	t.queue = append([]*Action{action}, t.queue...)
	t.mu.Unlock()
}

func (t *Typewriter) runAction(ctx context.Context, action *Action) error {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.mu.Unlock()

	startTime := time.Now()
	t.emit(Event{
		Seq:       seq,
		Kind:      action.Kind(),
		Label:     action.Label(),
		Status:    EventStarted,
		Run:       action.Runs() + 1,
		Timestamp: startTime,
	})

	err := action.Run(ctx, t.element)

	event := Event{
		Seq:       seq,
		Kind:      action.Kind(),
		Label:     action.Label(),
		Run:       action.Runs(),
		Ticks:     action.Ticks(),
		Text:      t.element.Text(),
		Timestamp: startTime,
		Duration:  time.Since(startTime),
	}

	switch action.State() {
	case StateComplete:
		event.Status = EventCompleted
	case StateInterrupted:
		event.Status = EventInterrupted
	default:
		event.Status = EventFailed
	}
	if err != nil {
		event.Error = err.Error()
	}

	t.recordAction(event)

	logEvent := t.logger.Debug()
	if event.Status == EventFailed {
		logEvent = t.logger.Error().Err(err)
	}
	logEvent.
		Uint64("seq", seq).
		Str("kind", string(event.Kind)).
		Str("status", string(event.Status)).
		Int("ticks", event.Ticks).
		Dur("duration", event.Duration).
		Msg("action finished")

	return err
}

func (t *Typewriter) recordAction(event Event) {
	t.statsMu.Lock()
	switch event.Status {
	case EventCompleted:
		t.stats.Completed++
	case EventInterrupted:
		t.stats.Interrupted++
	case EventFailed:
		t.stats.Failed++
	}
	now := event.Timestamp.Add(event.Duration)
	t.stats.LastActionAt = &now
	t.statsMu.Unlock()

	t.emit(event)
}

func (t *Typewriter) emit(event Event) {
	select {
	case t.events <- event:
	default:
	}
}
