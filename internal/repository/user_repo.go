package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/internal/model"
)

type PgUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, role, last_login_at, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.LastLoginAt, &u.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Create inserts a new user; u.ID must already be set.
func (r *PgUserRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, email, password_hash, name, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query, u.ID, u.Email, u.PasswordHash, u.Name, u.Role).Scan(&u.CreatedAt)
	return translate(err)
}

// FindByEmail returns user by email.
func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	return translate(err)
}

func (r *PgUserRepository) UpdateName(ctx context.Context, id, name string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
