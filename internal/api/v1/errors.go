package apiv1

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CreditFox/internal/pkg/credits"
	"github.com/ManuelReschke/CreditFox/internal/pkg/env"
)

// respondError maps a service error to the HTTP contract: unauthorized is
// 401, caller mistakes are 400 with the error text, everything else is a 500
// carrying internalMsg. The full error is logged either way.
func (s *APIServer) respondError(c *fiber.Ctx, err error, internalMsg string, attrs ...any) error {
	attrs = append(attrs, "request_id", c.Locals("requestid"), "error", err)

	switch {
	case errors.Is(err, credits.ErrUnauthorized):
		s.log.Info("unauthorized", attrs...)
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "unauthorized"})
	case credits.IsValidation(err):
		s.log.Info("request rejected", attrs...)
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	s.log.Error(internalMsg, attrs...)
	resp := ErrorResponse{Error: internalMsg}
	if env.IsDev() {
		resp.Details = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(resp)
}
