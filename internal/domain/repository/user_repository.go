package repository

import (
	"context"
	"errors"

	"github.com/dmarques/users-api/internal/domain/entity"
)

// ErrDuplicateEmail is returned by Create/Update when the store's uniqueness
// constraint on email rejects the write. The store is the final arbiter:
// callers may pre-check with EmailExists, but a racing insert still surfaces
// here.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines persistence operations for user records.
// "Not found" is reported as a (nil, nil) result, never as an error.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
