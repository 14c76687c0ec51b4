package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the pgx-backed user store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput, now time.Time) (User, error) {
	const op = "identity.CreateUser"

	if in.ID == "" || in.Email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "id and email are required"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return User{}, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback(ctx)

	u := User{
		ID:           in.ID,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now.UTC(),
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ConflictError{Op: op, Field: "email"}
		}
		return User{}, fmt.Errorf("%s: insert user: %w", op, err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO website_roles (user_id, role) VALUES ($1, $2)`,
		u.ID, string(WebsiteRoleUser),
	)
	if err != nil {
		return User{}, fmt.Errorf("%s: insert website role: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, fmt.Errorf("%s: commit: %w", op, err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.GetUserByEmail"
	return s.getUser(ctx, op,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"
	return s.getUser(ctx, op,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = $1`,
		id,
	)
}

func (s *PostgresStore) getUser(ctx context.Context, op, query string, arg any) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return User{}, fmt.Errorf("%s: query: %w", op, err)
	}
	return u, nil
}

func (s *PostgresStore) GetRolesForUser(ctx context.Context, userID string) (Roles, error) {
	const op = "identity.GetRolesForUser"

	var roles Roles
	var websiteRole string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(wr.role, 'user')
		 FROM users u
		 LEFT JOIN website_roles wr ON wr.user_id = u.id
		 WHERE u.id = $1`,
		userID,
	).Scan(&websiteRole)
	if errors.Is(err, pgx.ErrNoRows) {
		return Roles{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return Roles{}, fmt.Errorf("%s: website role: %w", op, err)
	}
	roles.WebsiteRole = WebsiteRole(websiteRole)

	rows, err := s.pool.Query(ctx,
		`SELECT org_id, role FROM org_members WHERE user_id = $1 ORDER BY org_id`,
		userID,
	)
	if err != nil {
		return Roles{}, fmt.Errorf("%s: org roles: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var or OrgRole
		var kind string
		if err := rows.Scan(&or.OrgID, &kind); err != nil {
			return Roles{}, fmt.Errorf("%s: scan org role: %w", op, err)
		}
		or.Role = OrgRoleKind(kind)
		roles.OrgRoles = append(roles.OrgRoles, or)
	}
	if err := rows.Err(); err != nil {
		return Roles{}, fmt.Errorf("%s: org roles: %w", op, err)
	}
	return roles, nil
}
