package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/ManuelReschke/CreditFox/internal/pkg/env"
)

// StripeProcessor reads checkout sessions through the Stripe API. It owns its
// backend and key and never touches the package-level stripe.Key.
type StripeProcessor struct {
	client checkoutsession.Client
}

// NewStripeProcessor creates a processor from an injected backend. A nil
// backend selects the default Stripe API backend.
func NewStripeProcessor(secretKey string, backend stripe.Backend) (*StripeProcessor, error) {
	key := strings.TrimSpace(secretKey)
	if key == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeProcessor{client: checkoutsession.Client{B: backend, Key: key}}, nil
}

// NewStripeProcessorFromEnv reads STRIPE_SECRET_KEY and the optional
// STRIPE_API_URL override used for stripe-mock and local testing.
func NewStripeProcessorFromEnv() (*StripeProcessor, error) {
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 15 * time.Second},
		MaxNetworkRetries: stripe.Int64(int64(env.GetEnvInt("STRIPE_MAX_NETWORK_RETRIES", 1))),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if u := strings.TrimSpace(env.GetEnv("STRIPE_API_URL", "")); u != "" {
		cfg.URL = stripe.String(u)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	return NewStripeProcessor(env.GetEnv("STRIPE_SECRET_KEY", ""), backend)
}

// GetCheckoutSession retrieves a checkout session by id.
func (p *StripeProcessor) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, ErrSessionNotFound
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := p.client.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) &&
			(stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("retrieve stripe checkout session %s: %w", id, err)
	}
	return fromStripeSession(sess), nil
}

func fromStripeSession(sess *stripe.CheckoutSession) *CheckoutSession {
	metadata := make(map[string]string, len(sess.Metadata))
	for k, v := range sess.Metadata {
		metadata[k] = v
	}
	return &CheckoutSession{
		ID:            sess.ID,
		PaymentStatus: normalizePaymentStatus(sess.PaymentStatus),
		Status:        string(sess.Status),
		Metadata:      metadata,
	}
}

func normalizePaymentStatus(status stripe.CheckoutSessionPaymentStatus) PaymentStatus {
	switch status {
	case stripe.CheckoutSessionPaymentStatusPaid:
		return PaymentStatusPaid
	case stripe.CheckoutSessionPaymentStatusUnpaid:
		return PaymentStatusUnpaid
	case stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return PaymentStatusNoPaymentRequired
	default:
		return PaymentStatusOther
	}
}
