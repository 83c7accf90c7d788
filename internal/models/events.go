package models

// EventType tags a TimerEvent.
type EventType string

const (
	EventStarted   EventType = "started"
	EventTick      EventType = "tick"
	EventCompleted EventType = "completed"
	EventStopped   EventType = "stopped"
)

// TimerEvent is an immutable lifecycle notification. Every event carries the
// session snapshot it describes, so a late-joining subscriber can render
// state from a tick alone without querying status first.
type TimerEvent struct {
	Type          EventType `json:"type"`
	RemainingSecs int64     `json:"remaining_secs,omitempty"`
	Session       Session   `json:"session"`
}

// TimerStatus is the point-in-time snapshot returned by status queries.
// Session is nil and RemainingSecs is zero while no session is active.
type TimerStatus struct {
	Session       *Session `json:"session"`
	RemainingSecs int64    `json:"remaining_secs"`
	IsRunning     bool     `json:"is_running"`
}
