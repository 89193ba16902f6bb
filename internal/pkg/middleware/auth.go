package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CreditFox/internal/pkg/usercontext"
)

// RequireSubject ensures a resolved subject for API routes and returns JSON 401 otherwise.
func RequireSubject(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !usercontext.IsLoggedIn(c) || usercontext.GetSubjectID(c) == "" {
			log.Info("unauthorized",
				"method", c.Method(),
				"path", c.Path(),
				"request_id", c.Locals("requestid"),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
