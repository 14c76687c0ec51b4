package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"gymgate/cmd/identity"
	"gymgate/cmd/security/token"
)

// Issued is the result of minting a session: the pair of tokens handed
// to the client and their lifetimes.
type Issued struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshSecret    string
	RefreshExpiresAt time.Time
}

// Service runs the session lifecycle against a Store, a user Directory
// and a TokenCodec. All operations take an explicit now so callers and
// tests control time.
type Service struct {
	cfg   Config
	store Store
	users Directory
	codec TokenCodec
	log   *slog.Logger

	// ReuseHook, when set, fires every time a spent refresh token is
	// presented again. Used for metrics.
	ReuseHook func()
}

func NewService(cfg Config, store Store, users Directory, codec TokenCodec, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{cfg: cfg, store: store, users: users, codec: codec, log: log}
}

// Refresh rotates a session: it spends the presented refresh token and,
// if the session is valid, mints a fresh token pair with a role
// snapshot taken now.
//
// Unknown, expired and revoked tokens all come back as
// ErrSessionInvalid. A token that was already spent additionally
// revokes every session of its user before returning ErrSessionInvalid.
// Storage and signer failures surface as their own retryable errors and
// leave the presented session usable.
func (s *Service) Refresh(ctx context.Context, refreshSecret string, now time.Time) (Issued, error) {
	hash := token.HashRefreshSecretHex(refreshSecret)
	if ps, ok := s.store.(*PostgresStore); ok {
		return s.refreshTx(ctx, ps, hash, now)
	}
	return s.refreshStore(ctx, hash, now)
}

// refreshStore is the rotation path for stores without transactions.
// A crash between Consume and Upsert loses the session; the Postgres
// path does not have that window.
func (s *Service) refreshStore(ctx context.Context, hash string, now time.Time) (Issued, error) {
	prev, err := s.store.Consume(ctx, hash, now)
	if errors.Is(err, ErrSessionNotFound) {
		return Issued{}, ErrSessionInvalid
	}
	if err != nil {
		return Issued{}, err
	}

	if !prev.Active {
		return Issued{}, s.onReuse(ctx, prev, now)
	}
	if prev.Expired(now) {
		s.log.Info("session.expired", "session_id", prev.ID, "user_id", prev.UserID)
		return Issued{}, ErrSessionInvalid
	}

	roles, err := s.rolesFor(ctx, prev.UserID)
	if err != nil {
		return Issued{}, err
	}

	issued, next, err := s.mint(prev.UserID, roles, now)
	if err != nil {
		return Issued{}, err
	}
	if err := s.store.Upsert(ctx, next); err != nil {
		return Issued{}, err
	}

	s.log.Info("session.rotated", "user_id", prev.UserID, "session_id", next.ID)
	return issued, nil
}

// refreshTx is the rotation path for Postgres. Consume's row lock
// serializes concurrent rotations of the same session; the loser finds
// the hash gone after the winner's Upsert replaces the row and gets a
// plain ErrSessionInvalid.
func (s *Service) refreshTx(ctx context.Context, ps *PostgresStore, hash string, now time.Time) (Issued, error) {
	tx, err := ps.pool.Begin(ctx)
	if err != nil {
		return Issued{}, storageErr("session.Refresh", err)
	}
	defer tx.Rollback(ctx)

	prev, err := consumeQ(ctx, tx, hash, now)
	if errors.Is(err, ErrSessionNotFound) {
		return Issued{}, ErrSessionInvalid
	}
	if err != nil {
		return Issued{}, err
	}

	if !prev.Active {
		if err := invalidateAllForUserQ(ctx, tx, prev.UserID, now); err != nil {
			return Issued{}, err
		}
		if err := tx.Commit(ctx); err != nil {
			return Issued{}, storageErr("session.Refresh", err)
		}
		return Issued{}, s.onReuse(ctx, prev, now)
	}
	if prev.Expired(now) {
		// Keep the consumption so the token stays spent.
		if err := tx.Commit(ctx); err != nil {
			return Issued{}, storageErr("session.Refresh", err)
		}
		s.log.Info("session.expired", "session_id", prev.ID, "user_id", prev.UserID)
		return Issued{}, ErrSessionInvalid
	}

	roles, err := s.rolesFor(ctx, prev.UserID)
	if errors.Is(err, ErrUserNotFound) {
		// The old session stays consumed; nothing new is issued.
		if cerr := tx.Commit(ctx); cerr != nil {
			return Issued{}, storageErr("session.Refresh", cerr)
		}
		s.log.Warn("session.user_gone", "session_id", prev.ID, "user_id", prev.UserID)
		return Issued{}, ErrUserNotFound
	}
	if err != nil {
		return Issued{}, err
	}

	issued, next, err := s.mint(prev.UserID, roles, now)
	if err != nil {
		return Issued{}, err
	}
	if err := upsertQ(ctx, tx, next); err != nil {
		return Issued{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Issued{}, storageErr("session.Refresh", err)
	}

	s.log.Info("session.rotated", "user_id", prev.UserID, "session_id", next.ID)
	return issued, nil
}

// onReuse handles a spent refresh token coming back. Every session of
// the user is revoked; the caller still sees only ErrSessionInvalid.
func (s *Service) onReuse(ctx context.Context, prev Session, now time.Time) error {
	s.log.Warn("session.reuse_detected", "session_id", prev.ID, "user_id", prev.UserID)
	if s.ReuseHook != nil {
		s.ReuseHook()
	}
	if _, isPg := s.store.(*PostgresStore); !isPg {
		if err := s.store.InvalidateAllForUser(ctx, prev.UserID, now); err != nil {
			return err
		}
	}
	return ErrSessionInvalid
}

// IssueInitialSession creates a session for a freshly authenticated
// user, replacing any existing one.
func (s *Service) IssueInitialSession(ctx context.Context, userID string, now time.Time) (Issued, error) {
	roles, err := s.rolesFor(ctx, userID)
	if err != nil {
		return Issued{}, err
	}
	issued, sess, err := s.mint(userID, roles, now)
	if err != nil {
		return Issued{}, err
	}
	if err := s.store.Upsert(ctx, sess); err != nil {
		return Issued{}, err
	}
	s.log.Info("session.issued", "user_id", userID, "session_id", sess.ID)
	return issued, nil
}

// Logout invalidates the session behind a refresh token. Unknown and
// already spent tokens are a no-op.
func (s *Service) Logout(ctx context.Context, refreshSecret string, now time.Time) error {
	hash := token.HashRefreshSecretHex(refreshSecret)
	sess, err := s.store.FindActiveByHash(ctx, hash)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.store.Invalidate(ctx, sess.ID, now); err != nil {
		return err
	}
	s.log.Info("session.logout", "user_id", sess.UserID, "session_id", sess.ID)
	return nil
}

// LogoutAll revokes every session of a user.
func (s *Service) LogoutAll(ctx context.Context, userID string, now time.Time) error {
	if err := s.store.InvalidateAllForUser(ctx, userID, now); err != nil {
		return err
	}
	s.log.Info("session.logout_all", "user_id", userID)
	return nil
}

// VerifyAccessToken validates an access token at now and returns its
// claims.
func (s *Service) VerifyAccessToken(tokenStr string, now time.Time) (AccessClaims, error) {
	return s.codec.Verify(tokenStr, now)
}

// rolesFor resolves the mint-time role snapshot. A missing user maps to
// ErrUserNotFound; any other directory failure is retryable storage
// trouble.
func (s *Service) rolesFor(ctx context.Context, userID string) (identity.Roles, error) {
	roles, err := s.users.GetRolesForUser(ctx, userID)
	if identity.IsNotFound(err) {
		return identity.Roles{}, ErrUserNotFound
	}
	if err != nil {
		return identity.Roles{}, fmt.Errorf("session.roles: %w: %w", ErrStorageUnavailable, err)
	}
	return roles, nil
}

// mint draws a fresh refresh secret, signs an access token carrying the
// role snapshot, and builds the replacement session row.
func (s *Service) mint(userID string, roles identity.Roles, now time.Time) (Issued, Session, error) {
	secret, hash, err := newRefreshSecret(s.cfg.RefreshSecretBytes)
	if err != nil {
		return Issued{}, Session{}, fmt.Errorf("%w: %v", ErrSignerUnavailable, err)
	}

	accessExp := now.Add(s.cfg.AccessTokenTTL)
	tok, err := s.codec.Issue(AccessClaims{
		UserID:      userID,
		WebsiteRole: roles.WebsiteRole,
		OrgRoles:    roles.OrgRoles,
		IssuedAt:    now,
		ExpiresAt:   accessExp,
		Issuer:      s.cfg.Issuer,
	}, s.cfg.ClockSkew)
	if err != nil {
		return Issued{}, Session{}, err
	}

	refreshExp := now.Add(s.cfg.RefreshTTL)
	sess := Session{
		ID:               ulid.Make().String(),
		UserID:           userID,
		RefreshTokenHash: hash,
		ExpiresAt:        refreshExp.UTC(),
		Active:           true,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
	return Issued{
		AccessToken:      tok,
		AccessExpiresAt:  accessExp,
		RefreshSecret:    secret,
		RefreshExpiresAt: refreshExp,
	}, sess, nil
}
