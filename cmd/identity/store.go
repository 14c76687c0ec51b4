package identity

import (
	"context"
	"time"
)

// User is a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUserInput carries the fields needed to register an account.
// Email must already be normalized and PasswordHash already computed.
type CreateUserInput struct {
	ID           string
	Email        string
	PasswordHash string
}

// Store persists users and their role assignments.
type Store interface {
	// CreateUser inserts a new user with the default website role.
	// A duplicate email yields a ConflictError.
	CreateUser(ctx context.Context, in CreateUserInput, now time.Time) (User, error)

	// GetUserByEmail returns the user for a normalized email, or a
	// NotFoundError.
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// GetUserByID returns the user for an id, or a NotFoundError.
	GetUserByID(ctx context.Context, id string) (User, error)

	// GetRolesForUser returns the current website role and org roles for
	// a user. A user without an explicit website role row defaults to
	// WebsiteRoleUser. A missing user yields a NotFoundError.
	GetRolesForUser(ctx context.Context, userID string) (Roles, error)
}
