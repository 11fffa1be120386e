package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/ledger-be/internal/services"
)

// EventHandler handles HTTP requests for the activity log.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get recent activity.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = services.DefaultEventsLimit
	}

	events, err := h.service.Recent(r.Context(), uid, limit)
	if err != nil {
		writeServiceError(w, r, err, "Failed to retrieve events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}
