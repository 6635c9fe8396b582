package user

import (
	"context"

	"github.com/rowanleaf/service-accounts-go/internal/user/entity"
)

// Pagination bounds for List.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Service orchestrates the user record lifecycle. Registration and login
// live in the auth package; this covers reads and management of existing
// accounts.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a stable page of users. Page numbers start at 1; out-of-range
// inputs are clamped rather than rejected.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]*entity.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return s.repo.List(ctx, pageSize, (page-1)*pageSize)
}

// UpdateInput is the client-supplied partial update. Nil fields are left
// unchanged.
type UpdateInput struct {
	Email    *string
	Password *string
}

// Update validates and applies a partial update. An email change re-checks
// uniqueness at the store; a password change re-hashes.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*entity.User, error) {
	var upd Update
	if in.Email != nil {
		e := NormalizeEmail(*in.Email)
		if err := ValidateEmail(e); err != nil {
			return nil, err
		}
		upd.Email = &e
	}
	if in.Password != nil {
		if err := ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}
	return s.repo.Update(ctx, id, upd)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
