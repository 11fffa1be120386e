package services

import (
	"context"
	"database/sql"

	"github.com/isdelr/ledger-be/internal/ledger"
	"github.com/isdelr/ledger-be/internal/models"
)

// LedgerData is everything the client needs to render a user's books.
type LedgerData struct {
	Accounts []models.Account `json:"accounts"`
	Entries  []models.Entry   `json:"entries"`
}

// ReportServiceProvider defines the interface for report services.
type ReportServiceProvider interface {
	Data(ctx context.Context, userID string) (LedgerData, error)
	Report(ctx context.Context, userID string) (ledger.Report, error)
}

// ReportService loads a user's books and derives statements from them.
type ReportService struct {
	db *sql.DB
}

// NewReportService creates a new ReportService.
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

// Data returns the user's accounts and entries with their lines.
func (s *ReportService) Data(ctx context.Context, userID string) (LedgerData, error) {
	accounts, err := listAccounts(ctx, s.db, userID)
	if err != nil {
		return LedgerData{}, err
	}
	entries, err := listEntries(ctx, s.db, userID)
	if err != nil {
		return LedgerData{}, err
	}
	return LedgerData{Accounts: accounts, Entries: entries}, nil
}

// Report derives the trial balance, statements, general ledger and trend.
func (s *ReportService) Report(ctx context.Context, userID string) (ledger.Report, error) {
	data, err := s.Data(ctx, userID)
	if err != nil {
		return ledger.Report{}, err
	}
	return ledger.NewBook(data.Accounts, data.Entries).Report(), nil
}
