package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgUserRepository implements UserRepository on a pgx connection pool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgUserRepository wraps a connected pool.
func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) FindByPseudonym(ctx context.Context, pseudonym string) (*User, error) {
	return r.findBy(ctx, "email = $1", pseudonym)
}

func (r *PgUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findBy(ctx, "id = $1", id)
}

func (r *PgUserRepository) findBy(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		"SELECT id, username, email, role, created_at FROM users WHERE "+where, arg,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (r *PgUserRepository) Create(ctx context.Context, user *User) error {
	err := r.pool.QueryRow(ctx,
		"INSERT INTO users (username, email, role) VALUES ($1, $2, $3) RETURNING id, created_at",
		user.Username, user.Email, user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

var _ UserRepository = (*PgUserRepository)(nil)
