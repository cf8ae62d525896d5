package auth

import (
	"context"
	"errors"
)

var (
	ErrMissingFields      = errors.New("name, email and password are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type UserRepository interface {
	// Insert persists the user and fills in its store-assigned ID.
	// A duplicate email maps to ErrEmailTaken.
	Insert(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenVerifier is the read side of token handling, enough for the
// optional-auth middleware.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
