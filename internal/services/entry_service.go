package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/ledger-be/internal/database"
	"github.com/isdelr/ledger-be/internal/ledger"
	"github.com/isdelr/ledger-be/internal/models"
)

const dateLayout = "2006-01-02"

// LineInput is one submitted entry line.
type LineInput struct {
	AccountID string
	Debit     float64
	Credit    float64
}

// EntryInput is a submitted entry. An empty ID creates a new entry.
type EntryInput struct {
	ID          string
	Date        string
	Description string
	IsAdjusting bool
	Lines       []LineInput
}

// SaveResult reports the stored entry id and whether its lines balance.
type SaveResult struct {
	ID       string
	Created  bool
	Balanced bool
}

// EntryServiceProvider defines the interface for journal entry services.
type EntryServiceProvider interface {
	List(ctx context.Context, userID string) ([]models.Entry, error)
	Save(ctx context.Context, userID string, in EntryInput) (SaveResult, error)
	Delete(ctx context.Context, userID, entryID string) error
}

// EntryService stores journal and adjusting entries.
type EntryService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewEntryService creates a new EntryService.
func NewEntryService(db *sql.DB, events EventServiceProvider) *EntryService {
	return &EntryService{db: db, events: events}
}

// List returns the user's entries in date order, each with its lines.
func (s *EntryService) List(ctx context.Context, userID string) ([]models.Entry, error) {
	return listEntries(ctx, s.db, userID)
}

func listEntries(ctx context.Context, q querier, userID string) ([]models.Entry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, date, description, is_adjusting
		FROM entries
		WHERE user_id = ?
		ORDER BY date, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	index := make(map[string]int)
	for rows.Next() {
		e := models.Entry{Lines: []models.EntryLine{}}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Description, &e.IsAdjusting); err != nil {
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineRows, err := q.QueryContext(ctx, `
		SELECT l.id, l.entry_id, l.account_id, l.debit, l.credit, l.type
		FROM entry_lines l
		JOIN entries e ON e.id = l.entry_id
		WHERE e.user_id = ?
		ORDER BY l.entry_id, l.position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query entry lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l models.EntryLine
		if err := lineRows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.Type); err != nil {
			return nil, err
		}
		if i, ok := index[l.EntryID]; ok {
			entries[i].Lines = append(entries[i].Lines, l)
		}
	}
	return entries, lineRows.Err()
}

// Save creates or updates an entry. Every referenced account must belong to
// the user; on update the entry's previous lines are replaced. The whole save
// runs in one transaction.
func (s *EntryService) Save(ctx context.Context, userID string, in EntryInput) (SaveResult, error) {
	if len(in.Lines) == 0 {
		return SaveResult{}, ErrNoLines
	}
	accountIDs := distinctAccountIDs(in.Lines)
	if len(accountIDs) == 0 {
		return SaveResult{}, ErrNoAccounts
	}
	if err := validateEntry(in); err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{ID: in.ID, Created: in.ID == ""}
	lines := make([]models.EntryLine, 0, len(in.Lines))

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		owned, err := ownedAccountIDs(ctx, tx, userID, accountIDs)
		if err != nil {
			return err
		}
		if len(owned) != len(accountIDs) {
			log.Warn().Str("user_id", userID).Strs("requested", accountIDs).Msg("Entry references accounts owned by another user")
			return ErrForeignAccount
		}

		description := strings.TrimSpace(in.Description)
		if result.Created {
			result.ID = uuid.New().String()
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO entries (id, user_id, date, description, is_adjusting) VALUES (?, ?, ?, ?, ?)",
				result.ID, userID, in.Date, description, in.IsAdjusting); err != nil {
				return fmt.Errorf("insert entry: %w", err)
			}
		} else {
			res, err := tx.ExecContext(ctx,
				"UPDATE entries SET date = ?, description = ? WHERE id = ? AND user_id = ?",
				in.Date, description, in.ID, userID)
			if err != nil {
				return fmt.Errorf("update entry: %w", err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return ErrEntryNotOwned
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM entry_lines WHERE entry_id = ?", in.ID); err != nil {
				return fmt.Errorf("delete entry lines: %w", err)
			}
		}

		for i, l := range in.Lines {
			if l.AccountID == "" {
				continue
			}
			line := models.EntryLine{
				ID:        uuid.New().String(),
				EntryID:   result.ID,
				AccountID: l.AccountID,
				Debit:     l.Debit,
				Credit:    l.Credit,
				Type:      models.TypeFor(l.Debit),
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO entry_lines (id, entry_id, account_id, position, debit, credit, type) VALUES (?, ?, ?, ?, ?, ?, ?)",
				line.ID, line.EntryID, line.AccountID, i, line.Debit, line.Credit, string(line.Type)); err != nil {
				return fmt.Errorf("insert entry line: %w", err)
			}
			lines = append(lines, line)
		}
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}

	check := ledger.CheckLines(lines)
	result.Balanced = check.Balanced
	if !check.Balanced {
		log.Warn().
			Str("entry_id", result.ID).
			Float64("debits", check.TotalDebits).
			Float64("credits", check.TotalCredits).
			Msg("Saved entry does not balance")
	}

	eventType, verb := EventEntryUpdate, "updated"
	if result.Created {
		eventType, verb = EventEntryCreate, "created"
	}
	level := levelInfo
	if !check.Balanced {
		level = levelWarn
	}
	recordEvent(ctx, s.events, userID, eventType, level,
		fmt.Sprintf("Entry %s on %s %s with %d lines", describe(in.Description), in.Date, verb, len(lines)))
	return result, nil
}

// Delete removes an entry and all of its lines.
func (s *EntryService) Delete(ctx context.Context, userID, entryID string) error {
	var entry models.Entry
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			"SELECT id, date, description FROM entries WHERE id = ? AND user_id = ?", entryID, userID).
			Scan(&entry.ID, &entry.Date, &entry.Description)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEntryNotOwned
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM entry_lines WHERE entry_id = ?", entryID); err != nil {
			return fmt.Errorf("delete entry lines: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ? AND user_id = ?", entryID, userID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordEvent(ctx, s.events, userID, EventEntryDelete, levelInfo,
		fmt.Sprintf("Entry %s on %s deleted", describe(entry.Description), entry.Date))
	return nil
}

// distinctAccountIDs lists the non-empty account ids in first-seen order.
func distinctAccountIDs(lines []LineInput) []string {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.AccountID == "" || seen[l.AccountID] {
			continue
		}
		seen[l.AccountID] = true
		ids = append(ids, l.AccountID)
	}
	return ids
}

func validateEntry(in EntryInput) error {
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return ErrInvalidEntry
	}
	for _, l := range in.Lines {
		if l.Debit < 0 || l.Credit < 0 {
			return ErrInvalidEntry
		}
	}
	return nil
}

func describe(description string) string {
	if d := strings.TrimSpace(description); d != "" {
		return fmt.Sprintf("%q", d)
	}
	return "(no description)"
}
