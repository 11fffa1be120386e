package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/ledger-be/internal/services"
)

// EntryHandler handles HTTP requests for journal entries.
type EntryHandler struct {
	service  services.EntryServiceProvider
	notifier Notifier
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(service services.EntryServiceProvider, notifier Notifier) *EntryHandler {
	return &EntryHandler{service: service, notifier: notifier}
}

// amount accepts a JSON number or a numeric string; empty means zero.
type amount float64

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid amount %q", s)
	}
	*a = amount(f)
	return nil
}

// LinePayload is one submitted entry line.
type LinePayload struct {
	AccountID string `json:"accountId"`
	Debit     amount `json:"debit"`
	Credit    amount `json:"credit"`
}

// EntryPayload defines the structure for entry save requests.
type EntryPayload struct {
	ID          string        `json:"id"`
	Date        string        `json:"date"`
	Description string        `json:"description"`
	IsAdjusting bool          `json:"is_adjusting"`
	Lines       []LinePayload `json:"lines"`
}

// SaveResponse is returned after an entry is stored.
type SaveResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Balanced bool   `json:"balanced"`
}

func (p EntryPayload) input() services.EntryInput {
	in := services.EntryInput{
		ID:          strings.TrimSpace(p.ID),
		Date:        strings.TrimSpace(p.Date),
		Description: p.Description,
		IsAdjusting: p.IsAdjusting,
		Lines:       make([]services.LineInput, 0, len(p.Lines)),
	}
	for _, l := range p.Lines {
		in.Lines = append(in.Lines, services.LineInput{
			AccountID: strings.TrimSpace(l.AccountID),
			Debit:     float64(l.Debit),
			Credit:    float64(l.Credit),
		})
	}
	return in
}

// Save creates an entry, or replaces one when the payload carries an id.
func (h *EntryHandler) Save(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var payload EntryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.service.Save(r.Context(), uid, payload.input())
	if err != nil {
		writeServiceError(w, r, err, "Failed to save entry")
		return
	}

	op := "update"
	if res.Created {
		op = "create"
	}
	log.Info().Str("user_id", uid).Str("entry_id", res.ID).Str("op", op).Msg("Saved entry")
	notify(h.notifier, uid, "entry", op, res.ID)
	writeJSON(w, http.StatusOK, SaveResponse{Success: true, ID: res.ID, Balanced: res.Balanced})
}

// Delete removes an entry and its lines.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), uid, id); err != nil {
		writeServiceError(w, r, err, "Failed to delete entry")
		return
	}

	notify(h.notifier, uid, "entry", "delete", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
