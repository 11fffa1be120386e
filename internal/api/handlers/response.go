package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/ledger-be/internal/auth"
	"github.com/isdelr/ledger-be/internal/services"
	ws "github.com/isdelr/ledger-be/internal/websocket"
)

// Notifier pushes change notifications to a user's open connections.
type Notifier interface {
	Notify(userID string, msg ws.Message)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps a service error to its status code. Unknown errors
// are logged and reported as 500 without their details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg(action)
		writeError(w, status, action)
		return
	}
	log.Debug().Err(err).Int("status", status).Msg(action)
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrDuplicateUsername),
		errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrInvalidPassword),
		errors.Is(err, services.ErrMissingUsername),
		errors.Is(err, services.ErrInvalidAccount),
		errors.Is(err, services.ErrAccountInUse),
		errors.Is(err, services.ErrNoLines),
		errors.Is(err, services.ErrNoAccounts),
		errors.Is(err, services.ErrInvalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForeignAccount),
		errors.Is(err, services.ErrEntryNotOwned):
		return http.StatusForbidden
	case errors.Is(err, services.ErrAccountNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// userID returns the authenticated user, writing a 401 when there is none.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeError(w, http.StatusUnauthorized, "Missing auth token")
		return "", false
	}
	return claims.UserID, true
}

func notify(n Notifier, userID, resource, op, id string) {
	if n != nil {
		n.Notify(userID, ws.NewLedgerChangedMessage(resource, op, id))
	}
}
