package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isdelr/ledger-be/internal/models"
	"github.com/isdelr/ledger-be/internal/services"
)

// AccountHandler handles HTTP requests for the chart of accounts.
type AccountHandler struct {
	service  services.AccountServiceProvider
	notifier Notifier
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service services.AccountServiceProvider, notifier Notifier) *AccountHandler {
	return &AccountHandler{service: service, notifier: notifier}
}

// AccountPayload defines the structure for account creation requests.
type AccountPayload struct {
	Code string             `json:"code"`
	Name string             `json:"name"`
	Type models.AccountType `json:"type"`
}

// Create adds an account to the caller's chart.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var payload AccountPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.service.Create(r.Context(), uid, payload.Code, payload.Name, payload.Type)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create account")
		return
	}

	notify(h.notifier, uid, "account", "create", account.ID)
	writeJSON(w, http.StatusOK, account)
}

// Delete removes one of the caller's accounts.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), uid, id); err != nil {
		writeServiceError(w, r, err, "Failed to delete account")
		return
	}

	notify(h.notifier, uid, "account", "delete", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
