package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/ledger-be/internal/chart"
	"github.com/isdelr/ledger-be/internal/database"
	"github.com/isdelr/ledger-be/internal/models"
)

// ReconcileResult counts the rows touched by a reconciliation run.
type ReconcileResult struct {
	CodesBackfilled  int `json:"codesBackfilled"`
	AccountsInserted int `json:"accountsInserted"`
}

// MaintenanceServiceProvider defines the interface for chart maintenance.
type MaintenanceServiceProvider interface {
	BackfillCodes(ctx context.Context) (int, error)
	EnsureDefaultCharts(ctx context.Context) (int, error)
	Reconcile(ctx context.Context) (ReconcileResult, error)
}

// MaintenanceService brings existing users' charts in line with the default chart.
type MaintenanceService struct {
	db     *sql.DB
	chart  []chart.Template
	events EventServiceProvider
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(db *sql.DB, tmpl []chart.Template, events EventServiceProvider) *MaintenanceService {
	return &MaintenanceService{db: db, chart: tmpl, events: events}
}

// BackfillCodes sets the default code on accounts that have none and whose
// name matches a default account. It returns the number of rows updated.
func (s *MaintenanceService) BackfillCodes(ctx context.Context) (int, error) {
	updated := 0
	for _, t := range s.chart {
		res, err := s.db.ExecContext(ctx,
			"UPDATE accounts SET code = ? WHERE (code IS NULL OR code = '') AND name = ?", t.Code, t.Name)
		if err != nil {
			return updated, fmt.Errorf("backfill code %s: %w", t.Code, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return updated, err
		}
		if n > 0 {
			log.Info().Str("account", t.Name).Int64("rows", n).Msg("Backfilled account code")
		}
		updated += int(n)
	}
	return updated, nil
}

// EnsureDefaultCharts inserts, for every user, each default account that is
// missing both by code and by name. It returns the number of accounts added.
func (s *MaintenanceService) EnsureDefaultCharts(ctx context.Context) (int, error) {
	userIDs, err := s.userIDs(ctx)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, userID := range userIDs {
		added := 0
		err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			for _, t := range s.chart {
				var exists bool
				if err := tx.QueryRowContext(ctx,
					"SELECT EXISTS(SELECT 1 FROM accounts WHERE user_id = ? AND (code = ? OR name = ?))",
					userID, t.Code, t.Name).Scan(&exists); err != nil {
					return err
				}
				if exists {
					continue
				}
				a := models.Account{ID: uuid.New().String(), UserID: userID, Code: t.Code, Name: t.Name, Type: t.Type}
				if err := insertAccount(ctx, tx, a); err != nil {
					return err
				}
				added++
				log.Info().Str("user_id", userID).Str("code", t.Code).Str("account", t.Name).Msg("Added missing default account")
			}
			return nil
		})
		if err != nil {
			return inserted, fmt.Errorf("ensure chart for user %s: %w", userID, err)
		}
		inserted += added
	}
	return inserted, nil
}

func (s *MaintenanceService) userIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM users ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Reconcile backfills codes and then fills in missing default accounts.
func (s *MaintenanceService) Reconcile(ctx context.Context) (ReconcileResult, error) {
	var result ReconcileResult
	var err error

	if result.CodesBackfilled, err = s.BackfillCodes(ctx); err != nil {
		recordEvent(ctx, s.events, "", EventReconcile, levelError, fmt.Sprintf("Reconciliation failed: %v", err))
		return result, err
	}
	if result.AccountsInserted, err = s.EnsureDefaultCharts(ctx); err != nil {
		recordEvent(ctx, s.events, "", EventReconcile, levelError, fmt.Sprintf("Reconciliation failed: %v", err))
		return result, err
	}

	if result.CodesBackfilled > 0 || result.AccountsInserted > 0 {
		recordEvent(ctx, s.events, "", EventReconcile, levelInfo,
			fmt.Sprintf("Reconciliation backfilled %d codes and added %d accounts", result.CodesBackfilled, result.AccountsInserted))
	}
	return result, nil
}
