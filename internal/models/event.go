package models

import "time"

// Event represents a loggable action in a user's ledger or a system maintenance run.
type Event struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"userId,omitempty"` // Nullable for system-wide events
	Type      string    `json:"type"`             // e.g., "entry.create", "maintenance.reconcile"
	Level     string    `json:"level"`            // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
