package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

type roleFromClaims struct{}

// GetCurrentRole reads the role claim; "gone" stands for a deleted user and
// "broken" for a failing store.
func (roleFromClaims) GetCurrentRole(_ context.Context, token *jwt.Token) (user.Role, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("bad claims")
	}
	role, _ := claims["role"].(string)
	switch role {
	case "gone":
		return "", fmt.Errorf("%w: user not found", domain.ErrUnauthorized)
	case "broken":
		return "", errors.New("connection refused")
	}
	return user.Role(role), nil
}

func signed(t *testing.T, secret, role string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "6d1c2ffe-8a3b-4a3b-9f38-8b4c2e2c5a10",
		"role":    role,
		"exp":     exp.Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func newApp() *fiber.App {
	app := fiber.New()
	cfg := &config.Jwt{Secret: testSecret, Expiry: time.Hour}
	app.Get("/me", JwtProtected(cfg), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/admin", JwtProtected(cfg), RequireAdmin(roleFromClaims{}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func do(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck
	return resp.StatusCode
}

func TestJwtProtected(t *testing.T) {
	app := newApp()
	future := time.Now().Add(time.Hour)

	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/me", "not-a-jwt"))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/me", signed(t, "other-secret", "user", future)))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/me", signed(t, testSecret, "user", time.Now().Add(-time.Hour))))
	assert.Equal(t, fiber.StatusOK, do(t, app, "/me", signed(t, testSecret, "user", future)))
}

func TestRequireAdmin(t *testing.T) {
	app := newApp()
	future := time.Now().Add(time.Hour)

	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/admin", ""))
	assert.Equal(t, fiber.StatusForbidden, do(t, app, "/admin", signed(t, testSecret, "user", future)))
	assert.Equal(t, fiber.StatusOK, do(t, app, "/admin", signed(t, testSecret, "admin", future)))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "/admin", signed(t, testSecret, "gone", future)))
	assert.Equal(t, fiber.StatusInternalServerError, do(t, app, "/admin", signed(t, testSecret, "broken", future)))
}

func TestJwtError_AlwaysUnauthorized(t *testing.T) {
	for _, err := range []error{errors.New("Missing or malformed JWT"), errors.New("any other error")} {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error { return jwtError(c, err) })
		resp, rerr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, rerr)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "application/problem+json", resp.Header.Get(fiber.HeaderContentType))
	}
}
