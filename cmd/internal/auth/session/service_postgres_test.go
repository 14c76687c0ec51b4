package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"gymgate/cmd/identity"
)

func newPostgresFixture(t *testing.T) (*Service, string) {
	t.Helper()
	pool := testPool(t)
	userID := createTestUser(t, pool)

	cfg := DefaultConfig()
	svc := NewService(cfg,
		NewPostgresStore(pool),
		identity.NewPostgresStore(pool),
		NewEphemeralPasetoV4(cfg.Issuer),
		slog.New(slog.DiscardHandler),
	)
	return svc, userID
}

func TestPostgresRefreshLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, userID := newPostgresFixture(t)
	now := time.Now().UTC()

	first, err := svc.IssueInitialSession(ctx, userID, now)
	if err != nil {
		t.Fatalf("IssueInitialSession: %v", err)
	}
	if _, err := svc.VerifyAccessToken(first.AccessToken, now.Add(time.Minute)); err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}

	second, err := svc.Refresh(ctx, first.RefreshSecret, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshSecret == first.RefreshSecret {
		t.Fatal("rotation reissued the same refresh secret")
	}

	if _, err := svc.Refresh(ctx, first.RefreshSecret, now.Add(2*time.Minute)); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("spent secret = %v, want ErrSessionInvalid", err)
	}
	if _, err := svc.Refresh(ctx, second.RefreshSecret, now.Add(3*time.Minute)); err != nil {
		t.Fatalf("current secret: %v", err)
	}
}

func TestPostgresReuseAfterLogout(t *testing.T) {
	ctx := context.Background()
	svc, userID := newPostgresFixture(t)
	now := time.Now().UTC()

	issued, err := svc.IssueInitialSession(ctx, userID, now)
	if err != nil {
		t.Fatalf("IssueInitialSession: %v", err)
	}
	if err := svc.Logout(ctx, issued.RefreshSecret, now.Add(time.Minute)); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, issued.RefreshSecret, now.Add(2*time.Minute)); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("reused secret = %v, want ErrSessionInvalid", err)
	}
}

func TestPostgresConcurrentRefreshSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc, userID := newPostgresFixture(t)
	now := time.Now().UTC()

	issued, err := svc.IssueInitialSession(ctx, userID, now)
	if err != nil {
		t.Fatalf("IssueInitialSession: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Refresh(ctx, issued.RefreshSecret, now.Add(time.Minute))
		}()
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSessionInvalid):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly one: %v", wins, joinErrs(errs))
	}
}

func joinErrs(errs []error) string {
	out := ""
	for i, err := range errs {
		out += fmt.Sprintf("[%d] %v ", i, err)
	}
	return out
}
