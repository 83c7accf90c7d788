// Package engine holds the single mutable slot of truth for "what is running
// now". All transitions — start, stop, and tick-driven completion — are
// serialized through one operation lock, so a caller racing the ticker can
// never observe or produce an inconsistent state.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/timeboxai/timebox/internal/models"
)

var (
	// ErrAlreadyRunning is returned by Start while a session is active.
	ErrAlreadyRunning = errors.New("a timer is already running")

	// ErrNoActiveSession is returned by Stop when nothing is running.
	ErrNoActiveSession = errors.New("no timer is running")

	// ErrInvalidDuration is returned for durations outside 1-1440 minutes.
	ErrInvalidDuration = errors.New("invalid duration: must be between 1 and 1440 minutes")

	// ErrInvalidLabel is returned for labels that are empty after trimming,
	// longer than 64 characters, or contain control characters.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrInvalidOrigin is returned for origins other than human or agent.
	ErrInvalidOrigin = errors.New("invalid origin")
)

const (
	minDurationMinutes = 1
	maxDurationMinutes = 1440
	maxLabelRunes      = 64
)

// Recorder is the slice of the session store the engine writes through to.
type Recorder interface {
	Insert(session models.Session) error
	UpdateTerminal(id string, status models.SessionStatus, endedAt time.Time) error
}

// Publisher is the slice of the event bus the engine publishes to.
type Publisher interface {
	Publish(event models.TimerEvent)
}

// Options contains runtime knobs for the engine. The zero value gives a
// one-second tick on the real clock.
type Options struct {
	TickInterval time.Duration
	Now          func() time.Time
}

// Engine is the timer state machine: idle, or running exactly one session.
type Engine struct {
	// opMu serializes every mutation, including the store write it implies.
	// stateMu guards only the slot itself so Status reads never wait on
	// store I/O happening under opMu.
	opMu    sync.Mutex
	stateMu sync.RWMutex
	current *models.Session
	endsAt  time.Time
	stopCh  chan struct{}

	recorder Recorder
	events   Publisher
	logger   *slog.Logger
	now      func() time.Time
	interval time.Duration
}

// New creates an idle engine.
func New(recorder Recorder, events Publisher, logger *slog.Logger, options Options) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Engine{
		recorder: recorder,
		events:   events,
		logger:   logger,
		now:      options.Now,
		interval: options.TickInterval,
	}
}

// Start validates the input, creates a session, records it, arms the ticker,
// and publishes the started event. Validation happens before any state
// mutation or store write; a failed insert leaves the engine idle.
func (e *Engine) Start(durationMinutes int, label string, origin models.Origin) (models.Session, error) {
	label, err := normalizeLabel(label)
	if err != nil {
		return models.Session{}, err
	}
	if durationMinutes < minDurationMinutes || durationMinutes > maxDurationMinutes {
		return models.Session{}, ErrInvalidDuration
	}
	if !origin.IsValid() {
		return models.Session{}, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.stateMu.RLock()
	running := e.current != nil
	e.stateMu.RUnlock()
	if running {
		return models.Session{}, ErrAlreadyRunning
	}

	startedAt := e.now().UTC().Truncate(time.Second)
	session := models.Session{
		ID:           uuid.New().String(),
		Label:        label,
		DurationSecs: int64(durationMinutes) * 60,
		StartedAt:    startedAt,
		Origin:       origin,
		Status:       models.StatusRunning,
	}

	// The slot is populated only after the insert succeeds, so a persistence
	// failure leaves the engine idle with no partial effects.
	if err := e.recorder.Insert(session); err != nil {
		e.logger.Error("record session start", "id", session.ID, "error", err)
		return models.Session{}, fmt.Errorf("record session: %w", err)
	}

	stopCh := make(chan struct{})
	e.stateMu.Lock()
	e.current = &session
	e.endsAt = session.Deadline()
	e.stopCh = stopCh
	e.stateMu.Unlock()

	e.events.Publish(models.TimerEvent{Type: models.EventStarted, Session: session})
	go e.run(stopCh)

	return session, nil
}

// Stop terminates the active session. If the session's time is already up,
// completion takes precedence: the session completes exactly as if the tick
// had arrived first, and the completed session is returned with no error.
// A failed history update is returned to the caller, but the in-memory
// transition to idle happens regardless.
func (e *Engine) Stop() (models.Session, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.stateMu.RLock()
	current := e.current
	endsAt := e.endsAt
	e.stateMu.RUnlock()
	if current == nil {
		return models.Session{}, ErrNoActiveSession
	}

	now := e.now()
	if !now.Before(endsAt) {
		return e.completeLocked(), nil
	}

	endedAt := now.UTC().Truncate(time.Second)
	session := e.clearLocked(models.StatusStopped, endedAt)
	err := e.recorder.UpdateTerminal(session.ID, models.StatusStopped, endedAt)
	if err != nil {
		e.logger.Error("record stop", "id", session.ID, "error", err)
		err = fmt.Errorf("session stopped, record update failed: %w", err)
	}
	e.events.Publish(models.TimerEvent{Type: models.EventStopped, Session: session})
	return session, err
}

// Status returns a snapshot of the current state. It never blocks on store
// I/O and never mutates state.
func (e *Engine) Status() models.TimerStatus {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	if e.current == nil {
		return models.TimerStatus{}
	}
	session := *e.current
	return models.TimerStatus{
		Session:       &session,
		RemainingSecs: remainingSecs(e.now(), e.endsAt),
		IsRunning:     true,
	}
}

// Close disarms the ticker without terminating the session. The in-flight
// session is intentionally volatile: after a restart the history sweep marks
// it stopped, and nothing tries to resume it.
func (e *Engine) Close() {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	e.stateMu.Lock()
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
	e.stateMu.Unlock()
}

func (e *Engine) run(stopCh chan struct{}) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			e.onTick()
		}
	}
}

// onTick advances the active session. Remaining time is derived from the
// wall clock rather than a tick counter, so delayed or missed ticks
// self-correct on the next invocation.
func (e *Engine) onTick() {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.stateMu.RLock()
	current := e.current
	endsAt := e.endsAt
	e.stateMu.RUnlock()
	if current == nil {
		return
	}

	now := e.now()
	if !now.Before(endsAt) {
		e.completeLocked()
		return
	}
	e.events.Publish(models.TimerEvent{
		Type:          models.EventTick,
		RemainingSecs: remainingSecs(now, endsAt),
		Session:       *current,
	})
}

// completeLocked finishes the active session. Caller holds opMu and has
// checked that a session is present and due. The recorded end is the planned
// deadline, not the wall-clock instant the tick happened to fire.
func (e *Engine) completeLocked() models.Session {
	e.stateMu.RLock()
	endedAt := e.current.Deadline()
	e.stateMu.RUnlock()

	session := e.clearLocked(models.StatusCompleted, endedAt)
	if err := e.recorder.UpdateTerminal(session.ID, models.StatusCompleted, endedAt); err != nil {
		e.logger.Error("record completion", "id", session.ID, "error", err)
	}
	e.events.Publish(models.TimerEvent{Type: models.EventCompleted, Session: session})
	return session
}

// clearLocked empties the slot, disarms the ticker, and returns the
// terminated session snapshot. Caller holds opMu.
func (e *Engine) clearLocked(status models.SessionStatus, endedAt time.Time) models.Session {
	e.stateMu.Lock()
	session := *e.current
	session.Status = status
	session.EndedAt = &endedAt
	e.current = nil
	e.endsAt = time.Time{}
	stopCh := e.stopCh
	e.stopCh = nil
	e.stateMu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	return session
}

func remainingSecs(now, endsAt time.Time) int64 {
	remaining := endsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	secs := int64((remaining + time.Second/2) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func normalizeLabel(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", fmt.Errorf("%w: label cannot be empty", ErrInvalidLabel)
	}
	if utf8.RuneCountInString(trimmed) > maxLabelRunes {
		return "", fmt.Errorf("%w: label must be %d characters or fewer", ErrInvalidLabel, maxLabelRunes)
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: label cannot contain control characters", ErrInvalidLabel)
		}
	}
	return trimmed, nil
}
