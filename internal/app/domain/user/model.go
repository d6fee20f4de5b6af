package user

import "time"

// User represents an authenticated account. Accounts created implicitly via
// login carry an empty password hash until one is registered.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session records an issued token. Only the SHA-256 hash of the token is
// stored.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
