package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/ledger-be/internal/chart"
	"github.com/isdelr/ledger-be/internal/database"
	"github.com/isdelr/ledger-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, name, username, email, password string) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db     *sql.DB
	chart  []chart.Template
	events EventServiceProvider
}

// NewUserService creates a new UserService. New users receive a copy of tmpl
// as their chart of accounts.
func NewUserService(db *sql.DB, tmpl []chart.Template, events EventServiceProvider) *UserService {
	return &UserService{db: db, chart: tmpl, events: events}
}

// Register creates a user with a hashed password and provisions the chart of
// accounts in the same transaction.
func (s *UserService) Register(ctx context.Context, name, username, email, password string) (models.User, error) {
	name, username, email = strings.TrimSpace(name), strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return models.User{}, ErrMissingFields
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Username: username,
		Email:    email,
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := checkUnique(ctx, tx, username, email); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO users (id, name, username, email, password_hash) VALUES (?, ?, ?, ?, ?)",
			user.ID, user.Name, user.Username, user.Email, string(hashedPassword))
		if err != nil {
			return uniqueViolation(err)
		}

		for _, t := range s.chart {
			a := models.Account{ID: uuid.New().String(), UserID: user.ID, Code: t.Code, Name: t.Name, Type: t.Type}
			if err := insertAccount(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	log.Info().Str("user_id", user.ID).Int("accounts", len(s.chart)).Msg("Registered user with default chart")
	recordEvent(ctx, s.events, user.ID, EventUserRegister, levelInfo,
		fmt.Sprintf("User %s registered with %d default accounts", username, len(s.chart)))
	return user, nil
}

func checkUnique(ctx context.Context, q querier, username, email string) error {
	var exists bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)", username).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicateUsername
	}
	if err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicateEmail
	}
	return nil
}

// uniqueViolation maps a constraint failure raised by a concurrent insert.
func uniqueViolation(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: users.username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "UNIQUE constraint failed: users.email"):
		return ErrDuplicateEmail
	}
	return fmt.Errorf("insert user: %w", err)
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.getBy(ctx, "email", strings.TrimSpace(email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidPassword
	}
	if user.Username == "" {
		return models.User{}, ErrMissingUsername
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetByID retrieves a single user by their ID.
func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.getBy(ctx, "id", id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// getBy loads a user including the password hash. column is never user input.
func (s *UserService) getBy(ctx context.Context, column, value string) (models.User, error) {
	var (
		user                     models.User
		name, username, password sql.NullString
	)
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, username, email, password_hash, created_at FROM users WHERE "+column+" = ?", value)
	if err := row.Scan(&user.ID, &name, &username, &user.Email, &password, &user.CreatedAt); err != nil {
		return models.User{}, err
	}
	user.Name = name.String
	user.Username = username.String
	user.PasswordHash = password.String
	return user, nil
}
