package services

import "errors"

// Errors returned by the services. Handlers map them to HTTP status codes.
var (
	ErrMissingFields     = errors.New("username, email and password are required")
	ErrDuplicateUsername = errors.New("Username already exists.")
	ErrDuplicateEmail    = errors.New("Email already exists.")
	ErrUserNotFound      = errors.New("User not found")
	ErrInvalidPassword   = errors.New("Invalid password")
	ErrMissingUsername   = errors.New("This account does not have a username. Please register a new account with a username.")

	ErrInvalidAccount  = errors.New("account code, name and a valid type are required")
	ErrAccountNotFound = errors.New("Account not found or does not belong to you")
	ErrAccountInUse    = errors.New("Account has entry lines and cannot be deleted")

	ErrNoLines        = errors.New("Entry must have at least one line")
	ErrNoAccounts     = errors.New("Entry must have valid account IDs")
	ErrForeignAccount = errors.New("One or more accounts do not belong to you")
	ErrEntryNotOwned  = errors.New("Entry not found or does not belong to you")
	ErrInvalidEntry   = errors.New("Entry must have a YYYY-MM-DD date and non-negative amounts")
)
