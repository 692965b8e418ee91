package repositories

import (
	"context"
	"errors"

	"userdir/internal/models"
)

// ErrNotFound is returned when no user matches the requested username.
var ErrNotFound = errors.New("user not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Delete removes the record matching username and reports how many
	// documents were deleted (zero or one).
	Delete(ctx context.Context, username string) (int64, error)
	// UpdateField performs a single-field $set-style update and reports how
	// many documents matched the username.
	UpdateField(ctx context.Context, username, field string, value interface{}) (int64, error)
}
