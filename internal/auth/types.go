package auth

import "time"

// User represents a portal account. Accounts are created at seed time and are
// immutable afterwards; credential changes are out of scope.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
