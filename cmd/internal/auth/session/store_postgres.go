package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the pgx-backed session store. The sessions table
// carries UNIQUE constraints on user_id and refresh_token_hash; the
// one-active-session-per-user rule rides on the user_id constraint.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// querier is the subset of pgxpool.Pool and pgx.Tx the queries need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

func (p *PostgresStore) FindActiveByHash(ctx context.Context, hash string) (Session, error) {
	const op = "session.FindActiveByHash"

	var s Session
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, refresh_token_hash, expires_at, is_active, created_at, updated_at
		 FROM sessions
		 WHERE refresh_token_hash = $1 AND is_active`,
		hash,
	).Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.ExpiresAt, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, storageErr(op, err)
	}
	return s, nil
}

func (p *PostgresStore) Consume(ctx context.Context, hash string, now time.Time) (Session, error) {
	return consumeQ(ctx, p.pool, hash, now)
}

func (p *PostgresStore) Upsert(ctx context.Context, s Session) error {
	return upsertQ(ctx, p.pool, s)
}

func (p *PostgresStore) Invalidate(ctx context.Context, id string, now time.Time) error {
	const op = "session.Invalidate"

	_, err := p.pool.Exec(ctx,
		`UPDATE sessions SET is_active = FALSE, updated_at = $2
		 WHERE id = $1 AND is_active`,
		id, now.UTC(),
	)
	if err != nil {
		return storageErr(op, err)
	}
	return nil
}

func (p *PostgresStore) InvalidateAllForUser(ctx context.Context, userID string, now time.Time) error {
	return invalidateAllForUserQ(ctx, p.pool, userID, now)
}
