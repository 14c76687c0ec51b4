package session

import (
	"context"
	"time"

	"gymgate/cmd/identity"
)

// Session is one refresh-token session. The refresh secret itself is
// never stored; RefreshTokenHash is its SHA-256 (or HMAC) hex digest.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	ExpiresAt        time.Time
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Expired reports whether the session's lifetime has passed at now.
// A session expiring exactly at now is still valid.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists sessions. A user has at most one active session;
// Upsert enforces that by replacing any existing row for the user.
type Store interface {
	// FindActiveByHash returns the active session whose refresh hash
	// matches, or ErrSessionNotFound.
	FindActiveByHash(ctx context.Context, hash string) (Session, error)

	// Consume atomically deactivates the session with the given hash,
	// active or not, and returns its pre-deactivation snapshot, or
	// ErrSessionNotFound if no session carries the hash. A snapshot
	// with Active false means the token was already spent.
	Consume(ctx context.Context, hash string, now time.Time) (Session, error)

	// Upsert writes a session, replacing the user's existing row if
	// one exists.
	Upsert(ctx context.Context, s Session) error

	// Invalidate deactivates the session with the given id. Already
	// inactive or missing sessions are not an error.
	Invalidate(ctx context.Context, id string, now time.Time) error

	// InvalidateAllForUser deactivates every session of a user.
	InvalidateAllForUser(ctx context.Context, userID string, now time.Time) error
}

// Directory resolves the role snapshot embedded into access tokens at
// mint time. identity.Store satisfies it.
type Directory interface {
	GetRolesForUser(ctx context.Context, userID string) (identity.Roles, error)
}
