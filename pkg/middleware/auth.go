// Package middleware provides the Fiber authentication and authorization
// guards.
package middleware

import (
	"context"
	"errors"

	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RoleResolver returns the current role of the user behind a verified
// session token.
type RoleResolver interface {
	GetCurrentRole(ctx context.Context, token *jwt.Token) (user.Role, error)
}

// JwtProtected verifies the bearer token and stores it under
// common.TokenLocalsKey.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ContextKey:   common.TokenLocalsKey,
		ErrorHandler: jwtError,
	})
}

// jwtError answers 401 for a missing, malformed, expired or forged token.
func jwtError(c *fiber.Ctx, err error) error {
	detail := "Invalid or expired JWT"
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		detail = "Missing or malformed JWT"
	}
	return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", detail)
}

// RequireRole lets the request through only when the token's user currently
// holds role. It must run after JwtProtected.
func RequireRole(resolver RoleResolver, role user.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals(common.TokenLocalsKey).(*jwt.Token)
		if !ok {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		got, err := resolver.GetCurrentRole(c.UserContext(), token)
		if errors.Is(err, domain.ErrUnauthorized) {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid or expired JWT")
		}
		if err != nil {
			return common.ProblemDetailsJSON(c, "Authorization failed", err)
		}
		if got != role {
			return common.ErrorResponseJSON(c, fiber.StatusForbidden, "Forbidden", "insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin is RequireRole for the admin role.
func RequireAdmin(resolver RoleResolver) fiber.Handler {
	return RequireRole(resolver, user.RoleAdmin)
}
