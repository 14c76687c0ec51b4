package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// The queries below run against either the pool or an open
// transaction. Inside a transaction consumeQ's FOR UPDATE lock serializes
// concurrent rotations of the same session until commit.

// consumeQ deactivates the session carrying hash and returns its
// pre-deactivation snapshot in one statement. prev.is_active in the
// RETURNING list is the value before the update.
func consumeQ(ctx context.Context, q querier, hash string, now time.Time) (Session, error) {
	const op = "session.Consume"

	var s Session
	err := q.QueryRow(ctx,
		`WITH prev AS (
		     SELECT id, is_active FROM sessions
		     WHERE refresh_token_hash = $1
		     FOR UPDATE
		 )
		 UPDATE sessions s SET is_active = FALSE, updated_at = $2
		 FROM prev WHERE s.id = prev.id
		 RETURNING s.id, s.user_id, s.refresh_token_hash, s.expires_at, prev.is_active, s.created_at, s.updated_at`,
		hash, now.UTC(),
	).Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.ExpiresAt, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, storageErr(op, err)
	}
	return s, nil
}

// upsertQ writes a session, replacing the user's existing row. The
// user_id conflict path is what keeps one session per user.
func upsertQ(ctx context.Context, q querier, s Session) error {
	const op = "session.Upsert"

	_, err := q.Exec(ctx,
		`INSERT INTO sessions
		     (id, user_id, refresh_token_hash, expires_at, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		     id = EXCLUDED.id,
		     refresh_token_hash = EXCLUDED.refresh_token_hash,
		     expires_at = EXCLUDED.expires_at,
		     is_active = EXCLUDED.is_active,
		     created_at = EXCLUDED.created_at,
		     updated_at = EXCLUDED.updated_at`,
		s.ID, s.UserID, s.RefreshTokenHash, s.ExpiresAt.UTC(), s.Active,
		s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	)
	if err != nil {
		return storageErr(op, err)
	}
	return nil
}

func invalidateAllForUserQ(ctx context.Context, q querier, userID string, now time.Time) error {
	const op = "session.InvalidateAllForUser"

	_, err := q.Exec(ctx,
		`UPDATE sessions SET is_active = FALSE, updated_at = $2
		 WHERE user_id = $1 AND is_active`,
		userID, now.UTC(),
	)
	if err != nil {
		return storageErr(op, err)
	}
	return nil
}
