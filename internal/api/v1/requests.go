package apiv1

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// SetCreditsRequest is the body of POST /credits. Credits is a pointer so a
// missing field fails validation instead of silently setting 0.
type SetCreditsRequest struct {
	Credits *int64 `json:"credits" validate:"required,gte=0"`
}

// VerifyPaymentRequest is the body of POST /verify-payment.
type VerifyPaymentRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type CreditsResponse struct {
	Credits int64 `json:"credits"`
}

type SetCreditsResponse struct {
	Success bool  `json:"success"`
	Credits int64 `json:"credits"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// parseBody decodes the JSON body with the app's decoder regardless of the
// Content-Type header and validates the result.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.App().Config().JSONDecoder(c.Body(), out); err != nil {
		return err
	}
	return validate.Struct(out)
}
