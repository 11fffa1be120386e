package models

import "time"

// User represents a registered bookkeeping user.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the subset of user fields returned by the login endpoint.
type PublicUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips the identifiers and credentials from a user.
func (u User) Public() PublicUser {
	return PublicUser{Name: u.Name, Username: u.Username, Email: u.Email}
}
