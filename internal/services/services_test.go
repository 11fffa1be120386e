package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isdelr/ledger-be/internal/chart"
	"github.com/isdelr/ledger-be/internal/database"
	"github.com/isdelr/ledger-be/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// fixture wires every service over one fresh database.
type fixture struct {
	db          *sql.DB
	events      *EventService
	users       *UserService
	accounts    *AccountService
	entries     *EntryService
	reports     *ReportService
	maintenance *MaintenanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	events := NewEventService(db)
	return &fixture{
		db:          db,
		events:      events,
		users:       NewUserService(db, chart.Default(), events),
		accounts:    NewAccountService(db, events),
		entries:     NewEntryService(db, events),
		reports:     NewReportService(db),
		maintenance: NewMaintenanceService(db, chart.Default(), events),
	}
}

func (f *fixture) register(t *testing.T, username string) models.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), username, username, username+"@example.com", "pw-"+username)
	require.NoError(t, err)
	return user
}

// accountByCode returns the user's account with the given code.
func (f *fixture) accountByCode(t *testing.T, userID, code string) models.Account {
	t.Helper()
	accounts, err := f.accounts.List(context.Background(), userID)
	require.NoError(t, err)
	for _, a := range accounts {
		if a.Code == code {
			return a
		}
	}
	t.Fatalf("account %s not found for user %s", code, userID)
	return models.Account{}
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}
