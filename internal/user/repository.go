package user

import (
	"context"

	"github.com/rowanleaf/service-accounts-go/internal/user/entity"
)

// Update carries the optional fields of a user update. Nil fields are left
// unchanged.
type Update struct {
	Email        *string
	PasswordHash *string
}

// Repository provides data access for the users table. Implementations
// translate store-level failures into the package sentinel errors.
type Repository interface {
	// Create inserts a new user. A lower-cased email collision yields
	// ErrDuplicateEmail; the store's unique index makes this atomic under
	// concurrent calls.
	Create(ctx context.Context, email, passwordHash string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, id int64, upd Update) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
	// List returns users ordered by (created_at, id) so pagination is
	// stable across calls.
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
}
