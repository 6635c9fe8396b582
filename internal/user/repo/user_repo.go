// Package repo implements user.Repository over Postgres using sqlx.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rowanleaf/service-accounts-go/internal/user"
	"github.com/rowanleaf/service-accounts-go/internal/user/entity"
)

// Postgres class 23 code for unique constraint violations.
const uniqueViolation = pq.ErrorCode("23505")

const userColumns = `id, email, password_hash, created_at, updated_at`

// UserRepo provides data access for the users table. Every operation runs
// under a per-call deadline so a stalled store cannot block a request
// indefinitely.
type UserRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewUserRepo(db *sqlx.DB, timeout time.Duration) *UserRepo {
	return &UserRepo{db: db, timeout: timeout}
}

func (r *UserRepo) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Create inserts a new user row; the unique index on LOWER(email) makes
// concurrent duplicate registrations collapse to one winner.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash string) (*entity.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	const q = `INSERT INTO users (email, password_hash) VALUES ($1, $2)
		RETURNING ` + userColumns
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email, passwordHash); err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// GetByEmail matches case-insensitively; the index on LOWER(email) keeps
// this a lookup rather than a scan.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	const q = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email)=LOWER($1)`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (r *UserRepo) Update(ctx context.Context, id int64, upd user.Update) (*entity.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	const q = `UPDATE users SET
			email = COALESCE($2, email),
			password_hash = COALESCE($3, password_hash),
			updated_at = NOW()
		WHERE id=$1
		RETURNING ` + userColumns
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id, upd.Email, upd.PasswordHash); err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

// List orders by (created_at, id) so pages stay stable across calls.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	const q = `SELECT ` + userColumns + ` FROM users
		ORDER BY created_at, id LIMIT $1 OFFSET $2`
	rows := []*entity.User{}
	if err := r.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// translate maps store-level failures onto the user package sentinels so
// no raw driver error crosses the repository boundary.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return user.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return user.ErrDuplicateEmail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return user.ErrUnavailable
	}
	return err
}

// Compile-time interface check.
var _ user.Repository = (*UserRepo)(nil)
