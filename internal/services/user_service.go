package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"userdir/internal/models"
	"userdir/internal/repositories"
	"userdir/pkg/rabbitmq"
)

var emailPattern = regexp.MustCompile(`^.+@.+\..+$`)

// Validation failure modes surfaced to the handler layer.
var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidValue    = errors.New("invalid new value for this field")
	ErrFieldNotAllowed = errors.New("field cannot be updated")
)

// updatableFields is the allow-list for the single-field update operation.
// Any field name outside this set is rejected before touching the store.
var updatableFields = map[string]bool{
	"firstName":  true,
	"middleName": true,
	"lastName":   true,
	"mobile":     true,
	"email":      true,
	"role":       true,
	"password":   true,
}

// UserService handles business logic for the user directory operations.
type UserService struct {
	userRepo repositories.UserRepository
	auth     *AuthService
	mqClient *rabbitmq.Client // nil disables event publishing
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, auth *AuthService, mqClient *rabbitmq.Client) *UserService {
	return &UserService{
		userRepo: userRepo,
		auth:     auth,
		mqClient: mqClient,
	}
}

// ListUsers returns every stored user document.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// CreateUser validates the email, derives the username from the first name and
// mobile number, hashes the password and stores the document. All other field
// validation is the store's schema contract. Returns the derived username.
func (s *UserService) CreateUser(ctx context.Context, req models.User) (string, error) {
	if !emailPattern.MatchString(req.Email) {
		return "", ErrInvalidEmail
	}

	username := models.DeriveUsername(req.FirstName, req.Mobile)

	hashed, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	user := models.User{
		Username:   username,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Mobile:     req.Mobile,
		Email:      req.Email,
		Password:   hashed,
		Role:       req.Role,
	}

	if err := s.userRepo.Insert(ctx, &user); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.publishEvent("user.created", map[string]interface{}{
		"username": username,
		"role":     user.Role,
	})
	return username, nil
}

// DeleteUser removes the record matching username, reporting how many records
// were deleted (zero or one).
func (s *UserService) DeleteUser(ctx context.Context, username string) (int64, error) {
	deleted, err := s.userRepo.Delete(ctx, username)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.publishEvent("user.deleted", map[string]interface{}{
			"username": username,
		})
	}
	return deleted, nil
}

// UpdateField replaces a single field on the matching record. The raw value
// arrives as a path parameter string; mobile is parsed to an integer and
// password is hashed before storage. Reports how many records matched.
func (s *UserService) UpdateField(ctx context.Context, username, field, rawValue string) (int64, error) {
	if strings.TrimSpace(rawValue) == "" {
		return 0, ErrInvalidValue
	}
	if !updatableFields[field] {
		return 0, ErrFieldNotAllowed
	}

	var value interface{}
	switch field {
	case "mobile":
		mobile, err := strconv.ParseInt(rawValue, 10, 64)
		if err != nil {
			return 0, ErrInvalidValue
		}
		value = mobile
	case "password":
		hashed, err := s.auth.HashPassword(rawValue)
		if err != nil {
			return 0, err
		}
		value = hashed
	default:
		value = rawValue
	}

	matched, err := s.userRepo.UpdateField(ctx, username, field, value)
	if err != nil {
		return 0, err
	}
	if matched > 0 {
		s.publishEvent("user.updated", map[string]interface{}{
			"username": username,
			"field":    field,
		})
	}
	return matched, nil
}

// EnsureAdmin seeds the bootstrap ADMIN record if no "admin" user exists.
// Idempotent; called once at process start.
func (s *UserService) EnsureAdmin(ctx context.Context) error {
	if _, err := s.userRepo.FindByUsername(ctx, "admin"); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hashed, err := s.auth.HashPassword("admin")
	if err != nil {
		return err
	}

	admin := models.User{
		Username:  "admin",
		FirstName: "admin",
		Mobile:    1000000000,
		Email:     "test@gmail.com",
		Password:  hashed,
		Role:      models.RoleAdmin,
	}
	if err := s.userRepo.Insert(ctx, &admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	log.Println("Seeded default admin user")
	return nil
}

// publishEvent sends a user-lifecycle event to the message queue when one is
// configured. Publish failures are logged, never propagated to the caller.
func (s *UserService) publishEvent(event string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishUserEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
