package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CreditFox/internal/pkg/identity"
	"github.com/ManuelReschke/CreditFox/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the caller of every request and stores it as
// the user context. Requests without credentials continue as anonymous; a
// failing identity backend aborts with 500 so callers are never silently
// treated as logged out.
func UserContextMiddleware(resolver identity.Resolver, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := resolver.Resolve(c)
		switch {
		case err == nil:
			usercontext.SetUserContext(c, usercontext.UserContext{
				SubjectID:  id.SubjectID,
				AuthMethod: string(id.Method),
				IsLoggedIn: true,
			})
		case errors.Is(err, identity.ErrUnauthenticated):
			usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false})
		default:
			log.Error("identity resolution failed",
				"request_id", c.Locals("requestid"),
				"path", c.Path(),
				"error", err,
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
		return c.Next()
	}
}
