package apiv1

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CreditFox/internal/pkg/credits"
	"github.com/ManuelReschke/CreditFox/internal/pkg/logging"
	"github.com/ManuelReschke/CreditFox/internal/pkg/usercontext"
)

const requestTimeout = 15 * time.Second

// APIServer serves the credits API.
type APIServer struct {
	credits *credits.Service
	log     *slog.Logger
}

// NewAPIServer creates a new API server instance
func NewAPIServer(svc *credits.Service, log *slog.Logger) *APIServer {
	if log == nil {
		log = logging.Discard()
	}
	return &APIServer{credits: svc, log: log}
}

// RegisterHandlers installs the API routes on r. Callers are expected to have
// resolved the subject already; see middleware.RequireSubject.
func (s *APIServer) RegisterHandlers(r fiber.Router) {
	r.Get("/credits", s.GetCredits)
	r.Post("/credits", s.SetCredits)
	r.Post("/verify-payment", s.VerifyPayment)
}

// GetCredits returns the caller's balance, 0 when none was ever stored.
func (s *APIServer) GetCredits(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	subject := usercontext.GetSubjectID(c)
	balance, err := s.credits.GetBalance(ctx, subject)
	if err != nil {
		return s.respondError(c, err, "error fetching credits", "subject_id", subject)
	}
	return c.JSON(CreditsResponse{Credits: balance})
}

// SetCredits overwrites the caller's balance with a non-negative integer.
func (s *APIServer) SetCredits(c *fiber.Ctx) error {
	var req SetCreditsRequest
	if err := parseBody(c, &req); err != nil {
		return s.respondError(c, credits.ErrInvalidCredits, "error updating credits", "cause", err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	subject := usercontext.GetSubjectID(c)
	stored, err := s.credits.SetBalance(ctx, subject, *req.Credits)
	if err != nil {
		return s.respondError(c, err, "error updating credits", "subject_id", subject)
	}
	return c.JSON(SetCreditsResponse{Success: true, Credits: stored})
}

// VerifyPayment confirms a checkout session and credits the caller once.
// Repeating the call for a credited session succeeds without side effects.
func (s *APIServer) VerifyPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := parseBody(c, &req); err != nil {
		return s.respondError(c, credits.ErrMissingSessionID, "error verifying payment", "cause", err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	subject := usercontext.GetSubjectID(c)
	if _, err := s.credits.VerifyAndCredit(ctx, subject, req.SessionID); err != nil {
		return s.respondError(c, err, "error verifying payment", "subject_id", subject, "session_id", req.SessionID)
	}
	return c.JSON(SuccessResponse{Success: true})
}
