package users

import (
	"errors"
	"time"

	"github.com/e-motion/backend/internal/auth"
)

var (
	ErrNotFound           = errors.New("users: not found")
	ErrDuplicateEmail     = errors.New("users: email already in use")
	ErrInvalidCredentials = errors.New("users: invalid email or password")
	ErrPasswordTooShort   = errors.New("users: password too short")
	ErrInvalidInput       = errors.New("users: invalid input")
)

// MinPasswordLength is the minimum accepted plaintext password length.
const MinPasswordLength = 6

// User is an identity record. The password hash never leaves this package's
// callers: it is excluded from JSON and from API responses.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
