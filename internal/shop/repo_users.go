package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ DB *pgxpool.Pool }

const uniqueViolation = "23505"

// Create inserts the user row. The caller decides the role; self-registration
// always passes RoleCustomer explicitly rather than relying on a default.
func (r *UserRepo) Create(ctx context.Context, u User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, username, email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return Conflict("email", "username or email already taken")
	}
	return err
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(r.DB.QueryRow(ctx, userSelect+` WHERE email=$1`, email))
}

func (r *UserRepo) ByID(ctx context.Context, id string) (User, error) {
	return r.scanOne(r.DB.QueryRow(ctx, userSelect+` WHERE id=$1`, id))
}

const userSelect = `
	SELECT id, username, email, password_hash, first_name, last_name, role, created_at
	FROM users`

func (r *UserRepo) scanOne(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundf("user")
	}
	return u, err
}
