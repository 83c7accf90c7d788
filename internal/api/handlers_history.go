package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/timeboxai/timebox/internal/models"
	"github.com/timeboxai/timebox/internal/store"
)

// HistoryHandler serves the durable session history.
type HistoryHandler struct {
	sessions *store.SessionStore
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(sessions *store.SessionStore) *HistoryHandler {
	return &HistoryHandler{sessions: sessions}
}

// List handles GET /sessions with optional inclusive start_date and end_date
// filters (RFC 3339 timestamps or YYYY-MM-DD dates) applied to started_at.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r.URL.Query().Get("start_date"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date: "+err.Error())
		return
	}
	end, err := parseDateParam(r.URL.Query().Get("end_date"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date: "+err.Error())
		return
	}

	sessions, err := h.sessions.Query(start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if sessions == nil {
		sessions = []models.Session{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
	})
}

// parseDateParam accepts RFC 3339 timestamps or bare dates. A bare date used
// as the end of a range covers the whole day.
func parseDateParam(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("must be RFC 3339 or YYYY-MM-DD, got %q", value)
	}
	t = t.UTC()
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}
