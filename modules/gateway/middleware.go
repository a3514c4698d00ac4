package gateway

import (
	"strings"

	domain "github.com/example/dm-chat/domain/user"
	"github.com/example/dm-chat/modules/accounts"
	"github.com/gofiber/fiber/v2"
)

const (
	// IdentityContextKey is the key used to store the resolved identity
	// in the Fiber context.
	IdentityContextKey = "identity"
)

// AuthMiddleware creates a middleware that resolves bearer tokens to
// identities. Requests that resolve to anonymous are rejected.
func AuthMiddleware(accountsAdapter accounts.AccountsPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Token is required",
			})
		}

		identity, err := accountsAdapter.ResolveToken(c.UserContext(), token)
		if err != nil || identity.Anonymous {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(IdentityContextKey, identity)

		return c.Next()
	}
}

// identityFromContext extracts the resolved identity stored by
// AuthMiddleware.
func identityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(IdentityContextKey).(domain.Identity)
	return identity, ok
}
