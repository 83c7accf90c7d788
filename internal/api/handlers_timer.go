package api

import (
	"errors"
	"net/http"

	"github.com/timeboxai/timebox/internal/engine"
	"github.com/timeboxai/timebox/internal/models"
)

// TimerHandler handles timer command requests.
type TimerHandler struct {
	engine *engine.Engine
}

// NewTimerHandler creates a new timer handler.
func NewTimerHandler(eng *engine.Engine) *TimerHandler {
	return &TimerHandler{engine: eng}
}

type startRequest struct {
	DurationMinutes int    `json:"duration_minutes"`
	Label           string `json:"label"`
	Origin          string `json:"origin,omitempty"`
}

// Start handles POST /timer/start
func (h *TimerHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	origin := models.OriginHuman
	if req.Origin != "" {
		parsed, ok := models.ParseOrigin(req.Origin)
		if !ok {
			writeError(w, http.StatusBadRequest, "origin must be \"human\" or \"agent\"")
			return
		}
		origin = parsed
	}

	session, err := h.engine.Start(req.DurationMinutes, req.Label, origin)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrAlreadyRunning):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, engine.ErrInvalidDuration),
			errors.Is(err, engine.ErrInvalidLabel),
			errors.Is(err, engine.ErrInvalidOrigin):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// Stop handles POST /timer/stop
func (h *TimerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.Stop()
	if err != nil {
		if errors.Is(err, engine.ErrNoActiveSession) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		// The session did terminate in memory; only the history update
		// failed. Surface it once, as the engine does not retry.
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Status handles GET /timer/status
func (h *TimerHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Status())
}
