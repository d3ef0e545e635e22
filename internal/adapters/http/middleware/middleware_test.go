package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saeta-access/internal/config"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	app := fiber.New()
	app.Use(RequestTimeout(2 * time.Second))

	var hasDeadline bool
	app.Get("/", func(c *fiber.Ctx) error {
		_, hasDeadline = c.UserContext().Deadline()
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.True(t, hasDeadline)
}

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSelfOrRoles(t *testing.T) {
	cfg := &config.Config{AppMode: "dev", JWT: config.JWTConfig{Secret: "s3cret"}}

	app := fiber.New()
	app.Get("/users/:userId", AuthMiddleware(cfg), SelfOrRoles("userId", domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	call := func(path string, userID uint, role domain.Role) int {
		token, err := jwt.GenerateAccessToken(userID, "u", string(role), cfg.JWT.Secret, 5)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, call("/users/4", 4, domain.RoleUser))
	assert.Equal(t, fiber.StatusForbidden, call("/users/5", 4, domain.RoleUser))
	assert.Equal(t, fiber.StatusOK, call("/users/5", 1, domain.RoleAdmin))
	assert.Equal(t, fiber.StatusBadRequest, call("/users/abc", 4, domain.RoleUser))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/4", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestNoCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/", NoCacheHeaders(), func(c *fiber.Ctx) error {
		return c.SendString("token")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store, no-cache, must-revalidate", resp.Header.Get("Cache-Control"))
}
