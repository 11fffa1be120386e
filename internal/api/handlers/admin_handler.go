package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/ledger-be/internal/services"
	ws "github.com/isdelr/ledger-be/internal/websocket"
)

// Broadcaster pushes a message to every connected client.
type Broadcaster interface {
	BroadcastMessage(msg ws.Message)
}

// AdminHandler exposes maintenance operations.
type AdminHandler struct {
	service services.MaintenanceServiceProvider
	hub     Broadcaster
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service services.MaintenanceServiceProvider, hub Broadcaster) *AdminHandler {
	return &AdminHandler{service: service, hub: hub}
}

// BackfillCodes fills in missing account codes without a restart.
func (h *AdminHandler) BackfillCodes(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.BackfillCodes(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to backfill account codes")
		return
	}

	log.Info().Int("updated", updated).Msg("Backfilled account codes")
	if updated > 0 && h.hub != nil {
		h.hub.BroadcastMessage(ws.NewChartChangedMessage())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "updated": updated})
}
