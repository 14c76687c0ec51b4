package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreConsume(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sess := Session{
		ID:               "s1",
		UserID:           "u1",
		RefreshTokenHash: "h1",
		ExpiresAt:        now.Add(time.Hour),
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := m.Upsert(ctx, sess); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	prev, err := m.Consume(ctx, "h1", now)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !prev.Active {
		t.Fatal("snapshot should show the session as it was before consumption")
	}

	// Second consume still finds the row but reports it spent.
	prev, err = m.Consume(ctx, "h1", now)
	if err != nil {
		t.Fatalf("second Consume: %v", err)
	}
	if prev.Active {
		t.Fatal("second consume must report the token as spent")
	}

	if _, err := m.Consume(ctx, "missing", now); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Consume(missing) = %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreUpsertReplacesUserRow(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Now()

	a := Session{ID: "s1", UserID: "u1", RefreshTokenHash: "h1", ExpiresAt: now.Add(time.Hour), Active: true}
	b := Session{ID: "s2", UserID: "u1", RefreshTokenHash: "h2", ExpiresAt: now.Add(time.Hour), Active: true}
	if err := m.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert a: %v", err)
	}
	if err := m.Upsert(ctx, b); err != nil {
		t.Fatalf("Upsert b: %v", err)
	}

	if _, err := m.FindActiveByHash(ctx, "h1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("old row survived upsert: %v", err)
	}
	got, err := m.FindActiveByHash(ctx, "h2")
	if err != nil {
		t.Fatalf("FindActiveByHash: %v", err)
	}
	if got.ID != "s2" {
		t.Fatalf("ID = %q, want s2", got.ID)
	}
}

func TestMemoryStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Now()

	s := Session{ID: "s1", UserID: "u1", RefreshTokenHash: "h1", ExpiresAt: now.Add(time.Hour), Active: true}
	if err := m.Upsert(ctx, s); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := m.Invalidate(ctx, "s1", now); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := m.FindActiveByHash(ctx, "h1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session still active after Invalidate: %v", err)
	}
	// Missing and already inactive ids are fine.
	if err := m.Invalidate(ctx, "s1", now); err != nil {
		t.Fatalf("repeat Invalidate: %v", err)
	}
	if err := m.Invalidate(ctx, "ghost", now); err != nil {
		t.Fatalf("Invalidate(ghost): %v", err)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now}

	if s.Expired(now) {
		t.Fatal("session expiring exactly now must still be valid")
	}
	if !s.Expired(now.Add(time.Nanosecond)) {
		t.Fatal("session must be expired one tick past its expiry")
	}
}
