package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/timeboxai/timebox/internal/bus"
)

// EventsHandler streams timer lifecycle events over Server-Sent Events.
// Each connection gets its own bus subscription; a client that falls behind
// loses old events rather than slowing anyone else down, and re-syncs via
// GET /timer/status when it reconnects.
type EventsHandler struct {
	bus *bus.Bus
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(b *bus.Bus) *EventsHandler {
	return &EventsHandler{bus: b}
}

// Stream handles GET /events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := h.bus.Subscribe(bus.DefaultBuffer)
	defer sub.Close()

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
