package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/timeboxai/timebox/internal/models"
)

var (
	// ErrDuplicateID is returned when inserting a session whose id already
	// exists. Under correct engine use this never happens; callers treat it
	// as an integrity failure, not a retryable condition.
	ErrDuplicateID = errors.New("session id already exists")

	// ErrNotFound is returned when a terminal update names an unknown id.
	ErrNotFound = errors.New("session not found")
)

// SessionStore handles session history on SQLite. It is the write-through
// companion to the engine and never the authority on what is currently
// running.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new session store.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Insert persists a newly started session.
func (s *SessionStore) Insert(session models.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, label, duration_secs, started_at, ended_at, origin, status)
		VALUES (?, ?, ?, ?, NULL, ?, ?)
	`, session.ID, session.Label, session.DurationSecs, session.StartedAt.Unix(),
		string(session.Origin), string(session.Status))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: %s", ErrDuplicateID, session.ID)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UpdateTerminal marks the session as completed or stopped and records when
// it ended.
func (s *SessionStore) UpdateTerminal(id string, status models.SessionStatus, endedAt time.Time) error {
	if !status.IsTerminal() {
		return fmt.Errorf("update session %s: status %q is not terminal", id, status)
	}
	res, err := s.db.Exec(`
		UPDATE sessions SET status = ?, ended_at = ? WHERE id = ?
	`, string(status), endedAt.Unix(), id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Query returns sessions whose started_at falls in the inclusive range,
// newest first. Nil bounds are unbounded. An empty result is not an error.
func (s *SessionStore) Query(start, end *time.Time) ([]models.Session, error) {
	query := `
		SELECT id, label, duration_secs, started_at, ended_at, origin, status
		FROM sessions WHERE 1=1`
	var args []any

	if start != nil {
		query += " AND started_at >= ?"
		args = append(args, start.Unix())
	}
	if end != nil {
		query += " AND started_at <= ?"
		args = append(args, end.Unix())
	}
	query += " ORDER BY started_at DESC, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var (
			session   models.Session
			startedAt int64
			endedAt   sql.NullInt64
			origin    string
			status    string
		)
		if err := rows.Scan(&session.ID, &session.Label, &session.DurationSecs,
			&startedAt, &endedAt, &origin, &status); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.StartedAt = time.Unix(startedAt, 0).UTC()
		if endedAt.Valid {
			t := time.Unix(endedAt.Int64, 0).UTC()
			session.EndedAt = &t
		}
		session.Origin = models.Origin(origin)
		session.Status = models.SessionStatus(status)
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// CleanupStaleRunning repairs history after a crash: any session still marked
// running belongs to a dead process, so it becomes stopped. The recorded end
// never exceeds the session's planned deadline.
func (s *SessionStore) CleanupStaleRunning(now time.Time) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE sessions
		SET status = 'stopped',
		    ended_at = MIN(?, started_at + duration_secs)
		WHERE status = 'running'
	`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("cleanup stale sessions: %w", err)
	}
	return res.RowsAffected()
}
