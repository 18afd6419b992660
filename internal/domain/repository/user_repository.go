package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
)

// ErrNotFound is returned by lookups when no record matches.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	// Delete removes the record; a missing id is not an error.
	Delete(ctx context.Context, id int64) error
}

// SessionStore tracks issued sessions so tokens of changed or removed
// accounts stop verifying before they expire.
type SessionStore interface {
	Save(ctx context.Context, claims entity.Claims, ttl time.Duration) error
	Exists(ctx context.Context, userID int64) (bool, error)
	Delete(ctx context.Context, userID int64) error
}

// UserDirectory is a searchable, password-free projection of accounts.
type UserDirectory interface {
	Index(ctx context.Context, u *entity.User) error
	Remove(ctx context.Context, id int64) error
	Search(ctx context.Context, q string, size int) ([]entity.User, error)
}
