package models

import "time"

// Origin records who initiated a session. It is set at creation and never
// changes; stopping a session does not touch it.
type Origin string

const (
	OriginHuman Origin = "human"
	OriginAgent Origin = "agent"
)

// ParseOrigin maps a wire string to an Origin. The boolean reports whether
// the input named a known origin.
func ParseOrigin(s string) (Origin, bool) {
	switch Origin(s) {
	case OriginHuman, OriginAgent:
		return Origin(s), true
	}
	return "", false
}

func (o Origin) IsValid() bool {
	_, ok := ParseOrigin(string(o))
	return ok
}

// SessionStatus is the lifecycle state of a session. Running is the only
// non-terminal value; a session transitions exactly once to Completed or
// Stopped.
type SessionStatus string

const (
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusStopped   SessionStatus = "stopped"
)

func (s SessionStatus) IsValid() bool {
	switch s {
	case StatusRunning, StatusCompleted, StatusStopped:
		return true
	}
	return false
}

// IsTerminal reports whether the status is one of the two end states.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusStopped
}

// Session is one timeboxed attempt. Values are copied whenever they cross a
// component boundary; holders never share mutable state.
type Session struct {
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	DurationSecs int64         `json:"duration_secs"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      *time.Time    `json:"ended_at"`
	Origin       Origin        `json:"origin"`
	Status       SessionStatus `json:"status"`
}

// Duration returns the planned length of the session.
func (s Session) Duration() time.Duration {
	return time.Duration(s.DurationSecs) * time.Second
}

// Deadline is the instant the session completes if it is not stopped first.
func (s Session) Deadline() time.Time {
	return s.StartedAt.Add(s.Duration())
}
