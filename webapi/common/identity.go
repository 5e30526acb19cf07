package common

import (
	"fmt"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenLocalsKey is where the JWT middleware stores the parsed token.
const TokenLocalsKey = "user"

// IdentityResolver reads the caller from a verified session token.
type IdentityResolver interface {
	GetCurrentUserID(token *jwt.Token) (uuid.UUID, error)
}

// CurrentUserID returns the authenticated caller's id.
func CurrentUserID(c *fiber.Ctx, resolver IdentityResolver) (uuid.UUID, error) {
	token, ok := c.Locals(TokenLocalsKey).(*jwt.Token)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing user context", user.ErrUserUnauthorized)
	}
	return resolver.GetCurrentUserID(token)
}

// ParamUUID parses the named route parameter.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a valid UUID", domain.ErrInvalidArgument, name)
	}
	return id, nil
}
