package api

import (
	"net/http"

	"github.com/timeboxai/timebox/internal/engine"
	"github.com/timeboxai/timebox/internal/store"
)

type HealthHandler struct {
	db     *store.DB
	engine *engine.Engine
}

func NewHealthHandler(db *store.DB, eng *engine.Engine) *HealthHandler {
	return &HealthHandler{db: db, engine: eng}
}

type healthResponse struct {
	Status       string `json:"status"`
	SessionCount int    `json:"session_count"`
	IsRunning    bool   `json:"is_running"`
	DBError      string `json:"db_error,omitempty"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		IsRunning: h.engine.Status().IsRunning,
	}

	count, err := h.db.SessionCount()
	if err != nil {
		resp.Status = "degraded"
		resp.DBError = err.Error()
	} else {
		resp.SessionCount = count
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
