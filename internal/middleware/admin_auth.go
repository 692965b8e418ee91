package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"userdir/internal/models"
	"userdir/internal/services"
)

// AdminRequired is a Fiber middleware guarding a route behind a valid bearer
// token carrying the ADMIN role claim.
//
// With strict=false every denial is written with HTTP 200 and an error body,
// matching the legacy wire contract where callers inspect the body for an
// "error" key. With strict=true denials use 401/403.
func AdminRequired(authService *services.AuthService, strict bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(denyStatus(strict, fiber.StatusUnauthorized)).JSON(fiber.Map{
				"error": "No authorization header found.",
			})
		}

		// Expected format: "Bearer <token>". A malformed header yields an
		// empty token, which fails verification below.
		var tokenString string
		if parts := strings.Fields(authHeader); len(parts) > 1 {
			tokenString = parts[1]
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(denyStatus(strict, fiber.StatusUnauthorized)).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		role, _ := claims["role"].(string)
		if role != models.RoleAdmin {
			return c.Status(denyStatus(strict, fiber.StatusForbidden)).JSON(fiber.Map{
				"error": "Unauthorized user",
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals("username", claims["username"])
		c.Locals("role", role)

		return c.Next()
	}
}

func denyStatus(strict bool, code int) int {
	if strict {
		return code
	}
	return fiber.StatusOK
}
