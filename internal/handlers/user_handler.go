package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"userdir/internal/models"
	"userdir/internal/services"
)

const loginSuccessMessage = "Login successful. Use the following access token to make requests to protected routes"

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
	// strict switches domain failures from the legacy always-200 contract to
	// real HTTP status codes. The JSON body shapes are identical either way.
	strict bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, authService *services.AuthService, strict bool) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		strict:      strict,
	}
}

// RegisterRoutes registers the directory routes with the Fiber app. adminOnly
// guards every operation except login; the update route is deliberately gated
// too, unlike its historically public ancestor.
func (h *UserHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/list-users", adminOnly, h.HandleListUsers)
	router.Post("/create-user", adminOnly, h.HandleCreateUser)
	router.Put("/update/:username/:field/:updatedValue", adminOnly, h.HandleUpdateField)
	router.Post("/login", h.HandleLogin)
	router.Delete("/:username", adminOnly, h.HandleDeleteUser)
}

// HandleListUsers returns every stored user document as a JSON array.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.Context())
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return c.Status(h.status(fiber.StatusInternalServerError)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(users)
}

// HandleCreateUser creates a new user. Only the email pattern is checked here;
// the remaining field constraints are the store's schema contract.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req models.User
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create-user request body: %v", err)
		return c.Status(h.status(fiber.StatusBadRequest)).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	username, err := h.userService.CreateUser(c.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidEmail) {
			return c.Status(h.status(fiber.StatusBadRequest)).JSON(fiber.Map{
				"error": "Invalid email",
			})
		}
		log.Printf("Error creating user: %v", err)
		return c.Status(h.status(fiber.StatusInternalServerError)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":  "User created",
		"username": username,
	})
}

// HandleDeleteUser deletes the record matching the username path parameter.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	username := c.Params("username")

	deleted, err := h.userService.DeleteUser(c.Context(), username)
	if err != nil {
		log.Printf("Error deleting user %s: %v", username, err)
		return c.Status(h.status(fiber.StatusInternalServerError)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if deleted == 0 {
		return c.Status(h.status(fiber.StatusNotFound)).JSON(fiber.Map{
			"error": "No user found with this username",
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("%d user deleted", deleted),
	})
}

// HandleUpdateField replaces a single field on the matching record. The field
// name must be in the service's allow-list.
func (h *UserHandler) HandleUpdateField(c *fiber.Ctx) error {
	username := c.Params("username")
	field := c.Params("field")
	rawValue, err := url.PathUnescape(c.Params("updatedValue"))
	if err != nil {
		rawValue = c.Params("updatedValue")
	}

	if username == "" || field == "" || rawValue == "" {
		return c.Status(h.status(fiber.StatusBadRequest)).JSON(fiber.Map{
			"error": "Three request parameters are required: username, field, value",
		})
	}

	matched, err := h.userService.UpdateField(c.Context(), username, field, rawValue)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidValue):
			return c.Status(h.status(fiber.StatusBadRequest)).JSON(fiber.Map{
				"error": "Invalid new value for this field",
			})
		case errors.Is(err, services.ErrFieldNotAllowed):
			return c.Status(h.status(fiber.StatusBadRequest)).JSON(fiber.Map{
				"error": "Field cannot be updated",
			})
		}
		log.Printf("Error updating user %s field %s: %v", username, field, err)
		return c.Status(h.status(fiber.StatusInternalServerError)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if matched == 0 {
		return c.Status(h.status(fiber.StatusNotFound)).JSON(fiber.Map{
			"error": "No user found for this username",
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("%d user updated", matched),
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a bearer token on success.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(h.status(fiber.StatusBadRequest)).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	token, err := h.authService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownUser):
			return c.Status(h.status(fiber.StatusNotFound)).JSON(fiber.Map{
				"message": "No user found with this username.",
			})
		case errors.Is(err, services.ErrWrongPassword):
			return c.Status(h.status(fiber.StatusUnauthorized)).JSON(fiber.Map{
				"message": "Wrong password",
			})
		}
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return c.Status(h.status(fiber.StatusInternalServerError)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":     loginSuccessMessage,
		"accessToken": "Bearer " + token,
	})
}

func (h *UserHandler) status(code int) int {
	if h.strict {
		return code
	}
	return fiber.StatusOK
}
