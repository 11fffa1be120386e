package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/isdelr/ledger-be/internal/database"
	"github.com/isdelr/ledger-be/internal/models"
)

// AccountServiceProvider defines the interface for chart-of-accounts services.
type AccountServiceProvider interface {
	List(ctx context.Context, userID string) ([]models.Account, error)
	Create(ctx context.Context, userID, code, name string, accountType models.AccountType) (models.Account, error)
	Delete(ctx context.Context, userID, accountID string) error
}

// AccountService manages a user's chart of accounts.
type AccountService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB, events EventServiceProvider) *AccountService {
	return &AccountService{db: db, events: events}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// List returns a user's accounts ordered by code.
func (s *AccountService) List(ctx context.Context, userID string) ([]models.Account, error) {
	return listAccounts(ctx, s.db, userID)
}

func listAccounts(ctx context.Context, q querier, userID string) ([]models.Account, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, user_id, code, name, type FROM accounts WHERE user_id = ? ORDER BY code, name", userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var (
			a    models.Account
			code sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &code, &a.Name, &a.Type); err != nil {
			return nil, err
		}
		a.Code = code.String
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Create adds an account to the user's chart.
func (s *AccountService) Create(ctx context.Context, userID, code, name string, accountType models.AccountType) (models.Account, error) {
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	if code == "" || name == "" || !accountType.Valid() {
		return models.Account{}, ErrInvalidAccount
	}

	account := models.Account{
		ID:     uuid.New().String(),
		UserID: userID,
		Code:   code,
		Name:   name,
		Type:   accountType,
	}
	if err := insertAccount(ctx, s.db, account); err != nil {
		return models.Account{}, err
	}

	recordEvent(ctx, s.events, userID, EventAccountCreate, levelInfo,
		fmt.Sprintf("Account %s - %s created", code, name))
	return account, nil
}

func insertAccount(ctx context.Context, q querier, a models.Account) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO accounts (id, user_id, code, name, type) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.UserID, a.Code, a.Name, string(a.Type))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Delete removes an account the user owns. Accounts referenced by entry
// lines are kept so that no entry loses a side.
func (s *AccountService) Delete(ctx context.Context, userID, accountID string) error {
	var account models.Account
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var code sql.NullString
		err := tx.QueryRowContext(ctx,
			"SELECT id, code, name FROM accounts WHERE id = ? AND user_id = ?", accountID, userID).
			Scan(&account.ID, &code, &account.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		account.Code = code.String

		var inUse bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM entry_lines WHERE account_id = ?)", accountID).Scan(&inUse); err != nil {
			return err
		}
		if inUse {
			return ErrAccountInUse
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ? AND user_id = ?", accountID, userID)
		return err
	})
	if err != nil {
		return err
	}

	recordEvent(ctx, s.events, userID, EventAccountDelete, levelInfo,
		fmt.Sprintf("Account %s - %s deleted", account.Code, account.Name))
	return nil
}

// ownedAccountIDs reports which of ids belong to the user.
func ownedAccountIDs(ctx context.Context, q querier, userID string, ids []string) (map[string]bool, error) {
	owned := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return owned, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, userID)

	rows, err := q.QueryContext(ctx,
		fmt.Sprintf("SELECT id FROM accounts WHERE id IN (%s) AND user_id = ?", placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("check account ownership: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owned[id] = true
	}
	return owned, rows.Err()
}
