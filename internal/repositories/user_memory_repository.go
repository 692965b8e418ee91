package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"userdir/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
//
// It enforces the same field constraints as the MongoDB collection's
// $jsonSchema validator, so code exercised against it sees the storage
// contract of the real store. Used by tests and the storeless dev mode.
type MemoryUserRepository struct {
	users    map[string]models.User
	validate *validator.Validate
	mu       sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:    make(map[string]models.User),
		validate: validator.New(),
	}
}

// Insert stores a new user after validating it against the schema contract.
func (r *MemoryUserRepository) Insert(ctx context.Context, user *models.User) error {
	if err := r.validate.Struct(user); err != nil {
		return fmt.Errorf("document failed validation: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.Username] = *user
	return nil
}

// FindByUsername retrieves a user by username.
func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// List returns all stored users.
func (r *MemoryUserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userList := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		userList = append(userList, u)
	}
	return userList, nil
}

// Delete removes a user by username, reporting how many records were removed.
func (r *MemoryUserRepository) Delete(ctx context.Context, username string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return 0, nil
	}
	delete(r.users, username)
	return 1, nil
}

// UpdateField sets a single field on the matching user, validating the result
// against the schema contract before committing it.
func (r *MemoryUserRepository) UpdateField(ctx context.Context, username, field string, value interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return 0, nil
	}

	if err := setField(&user, field, value); err != nil {
		return 0, err
	}
	if err := r.validate.Struct(&user); err != nil {
		return 0, fmt.Errorf("document failed validation: %w", err)
	}
	r.users[username] = user
	return 1, nil
}

func setField(user *models.User, field string, value interface{}) error {
	switch field {
	case "username":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s requires a string value", field)
		}
		user.Username = s
	case "firstName":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s requires a string value", field)
		}
		user.FirstName = s
	case "middleName":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s requires a string value", field)
		}
		user.MiddleName = s
	case "lastName":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s requires a string value", field)
		}
		user.LastName = s
	case "email":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s requires a string value", field)
		}
		user.Email = s
	case "password":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s requires a string value", field)
		}
		user.Password = s
	case "role":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s requires a string value", field)
		}
		user.Role = s
	case "mobile":
		n, ok := toInt64(value)
		if !ok {
			return fmt.Errorf("field %s requires an integer value", field)
		}
		user.Mobile = n
	default:
		return fmt.Errorf("unknown field %s", field)
	}
	return nil
}

func toInt64(value interface{}) (int64, bool) {
	switch n := value.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
