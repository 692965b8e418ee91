package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"userdir/internal/middleware"
	"userdir/internal/models"
	"userdir/internal/repositories"
	"userdir/internal/services"
)

func setupGate(strict bool) (*fiber.App, *services.AuthService, *int) {
	authService := services.NewAuthService(repositories.NewMemoryUserRepository(), "test_jwt_secret")
	app := fiber.New()

	calls := 0
	app.Get("/protected", middleware.AdminRequired(authService, strict), func(c *fiber.Ctx) error {
		calls++
		return c.JSON(fiber.Map{"message": "ok"})
	})
	return app, authService, &calls
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var body map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&body)
	assert.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func TestAdminRequired_MissingHeader(t *testing.T) {
	app, _, calls := setupGate(false)

	resp, body := doRequest(t, app, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode) // legacy contract: denial is still 200
	assert.Equal(t, "No authorization header found.", body["error"])
	assert.Equal(t, 0, *calls)
}

func TestAdminRequired_InvalidToken(t *testing.T) {
	app, _, calls := setupGate(false)

	resp, body := doRequest(t, app, "Bearer not.a.token")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["error"], "invalid token")
	assert.Equal(t, 0, *calls)

	// A header without a token part fails verification the same way.
	_, body = doRequest(t, app, "Bearer")
	assert.Contains(t, body["error"], "invalid token")
	assert.Equal(t, 0, *calls)
}

func TestAdminRequired_NonAdminRole(t *testing.T) {
	app, authService, calls := setupGate(false)

	token, err := authService.IssueToken("john1234567890", models.RoleUser)
	assert.NoError(t, err)

	resp, body := doRequest(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Unauthorized user", body["error"])
	assert.Equal(t, 0, *calls)
}

func TestAdminRequired_AdminAllowed(t *testing.T) {
	app, authService, calls := setupGate(false)

	token, err := authService.IssueToken("admin", models.RoleAdmin)
	assert.NoError(t, err)

	resp, body := doRequest(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["message"])
	// The wrapped handler runs exactly once.
	assert.Equal(t, 1, *calls)
}

func TestAdminRequired_StrictStatusCodes(t *testing.T) {
	app, authService, calls := setupGate(true)

	resp, _ := doRequest(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := authService.IssueToken("john1234567890", models.RoleUser)
	assert.NoError(t, err)
	resp, _ = doRequest(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, *calls)
}
