// Package memory provides an in-memory user.Repository with the same
// semantics as the Postgres implementation, for tests and local runs
// without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rowanleaf/service-accounts-go/internal/user"
	"github.com/rowanleaf/service-accounts-go/internal/user/entity"
)

type UserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*entity.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: make(map[int64]*entity.User)}
}

// Create enforces case-insensitive email uniqueness under the lock, the
// way the unique index does in Postgres.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return nil, user.ErrDuplicateEmail
		}
	}
	r.nextID++
	now := time.Now().UTC()
	u := &entity.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *UserRepo) Update(ctx context.Context, id int64, upd user.Update) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if upd.Email != nil {
		for otherID, other := range r.byID {
			if otherID != id && strings.EqualFold(other.Email, *upd.Email) {
				return nil, user.ErrDuplicateEmail
			}
		}
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*entity.User, 0, len(r.byID))
	for _, u := range r.byID {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return []*entity.User{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Count reports the number of stored users (test helper).
func (r *UserRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Compile-time interface check.
var _ user.Repository = (*UserRepo)(nil)
