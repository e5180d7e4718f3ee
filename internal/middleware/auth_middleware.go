package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/pkg/logger"
)

const identityKey = "identity"

// TokenValidator turns a bearer token into the caller's identity.
type TokenValidator interface {
	ValidateToken(token string) (models.Identity, error)
}

func AuthMiddleware(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.Unauthorized("Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return apperrors.Unauthorized("Invalid authorization header format")
		}

		identity, err := tokens.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return apperrors.Unauthorized("Invalid token")
		}

		c.Locals(identityKey, identity)
		c.SetUserContext(logger.WithUserID(c.UserContext(), identity.UserID))
		return c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return apperrors.Unauthorized("Authentication required")
		}
		if !identity.IsAdmin() {
			return apperrors.Forbidden("Admin access required")
		}
		return c.Next()
	}
}

func IdentityFrom(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(identityKey).(models.Identity)
	return identity, ok && identity.UserID != 0
}
