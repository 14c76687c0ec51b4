package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("GYMGATE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("GYMGATE_TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	ctx := context.Background()
	id := fmt.Sprintf("u-%d", time.Now().UnixNano())
	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, 'x', now())`,
		id, id+"@example.com",
	)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, id)
		pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func TestPostgresStoreConsumeLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	store := NewPostgresStore(pool)
	userID := createTestUser(t, pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	hash := fmt.Sprintf("hash-%d", time.Now().UnixNano())
	sess := Session{
		ID:               ulid.Make().String(),
		UserID:           userID,
		RefreshTokenHash: hash,
		ExpiresAt:        now.Add(time.Hour),
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := store.Upsert(ctx, sess); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.FindActiveByHash(ctx, hash)
	if err != nil {
		t.Fatalf("FindActiveByHash: %v", err)
	}
	if got.UserID != userID {
		t.Fatalf("UserID = %q, want %q", got.UserID, userID)
	}

	prev, err := store.Consume(ctx, hash, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !prev.Active {
		t.Fatal("first consume must report the session as active")
	}

	prev, err = store.Consume(ctx, hash, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("second Consume: %v", err)
	}
	if prev.Active {
		t.Fatal("second consume must report the token as spent")
	}

	if _, err := store.Consume(ctx, "no-such-hash", now); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Consume(missing) = %v, want ErrSessionNotFound", err)
	}
}

func TestPostgresStoreUpsertReplacesUserRow(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	store := NewPostgresStore(pool)
	userID := createTestUser(t, pool)
	now := time.Now().UTC()

	h1 := fmt.Sprintf("h1-%d", time.Now().UnixNano())
	h2 := fmt.Sprintf("h2-%d", time.Now().UnixNano())

	a := Session{ID: ulid.Make().String(), UserID: userID, RefreshTokenHash: h1,
		ExpiresAt: now.Add(time.Hour), Active: true, CreatedAt: now, UpdatedAt: now}
	if err := store.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert a: %v", err)
	}
	b := Session{ID: ulid.Make().String(), UserID: userID, RefreshTokenHash: h2,
		ExpiresAt: now.Add(time.Hour), Active: true, CreatedAt: now, UpdatedAt: now}
	if err := store.Upsert(ctx, b); err != nil {
		t.Fatalf("Upsert b: %v", err)
	}

	if _, err := store.FindActiveByHash(ctx, h1); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("old row survived upsert: %v", err)
	}
	if _, err := store.FindActiveByHash(ctx, h2); err != nil {
		t.Fatalf("FindActiveByHash(new): %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx,
		`SELECT count(*) FROM sessions WHERE user_id = $1`, userID).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("session rows for user = %d, want 1", count)
	}
}

func TestPostgresStoreInvalidateAllForUser(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	store := NewPostgresStore(pool)
	userID := createTestUser(t, pool)
	now := time.Now().UTC()

	hash := fmt.Sprintf("h-%d", time.Now().UnixNano())
	s := Session{ID: ulid.Make().String(), UserID: userID, RefreshTokenHash: hash,
		ExpiresAt: now.Add(time.Hour), Active: true, CreatedAt: now, UpdatedAt: now}
	if err := store.Upsert(ctx, s); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.InvalidateAllForUser(ctx, userID, now); err != nil {
		t.Fatalf("InvalidateAllForUser: %v", err)
	}
	if _, err := store.FindActiveByHash(ctx, hash); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session still active: %v", err)
	}
}
