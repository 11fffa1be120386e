package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/ledger-be/internal/models"
)

// Event types recorded by the services.
const (
	EventUserRegister  = "user.register"
	EventAccountCreate = "account.create"
	EventAccountDelete = "account.delete"
	EventEntryCreate   = "entry.create"
	EventEntryUpdate   = "entry.update"
	EventEntryDelete   = "entry.delete"
	EventReconcile     = "maintenance.reconcile"
)

const (
	levelInfo  = "info"
	levelWarn  = "warn"
	levelError = "error"
)

// DefaultEventsLimit is the page size used when no limit is requested.
const DefaultEventsLimit = 20

const maxEventsLimit = 500

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	Record(ctx context.Context, userID, eventType, level, message string) error
	Recent(ctx context.Context, userID string, limit int) ([]models.Event, error)
}

// EventService stores the activity log.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Record logs a new event. An empty userID records a system event.
func (s *EventService) Record(ctx context.Context, userID, eventType, level, message string) error {
	var owner *string
	if userID != "" {
		owner = &userID
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, user_id, type, level, message, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.New().String(), owner, eventType, level, message, time.Now().UTC())
	return err
}

// Recent returns the newest events visible to a user: their own and system events.
func (s *EventService) Recent(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = DefaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, level, message, created_at
		FROM events
		WHERE user_id = ? OR user_id IS NULL
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var (
			event models.Event
			owner sql.NullString
		)
		if err := rows.Scan(&event.ID, &owner, &event.Type, &event.Level, &event.Message, &event.CreatedAt); err != nil {
			return nil, err
		}
		if owner.Valid {
			event.UserID = &owner.String
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// recordEvent writes to the activity log without failing the caller.
func recordEvent(ctx context.Context, events EventServiceProvider, userID, eventType, level, message string) {
	if events == nil {
		return
	}
	if err := events.Record(ctx, userID, eventType, level, message); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}
