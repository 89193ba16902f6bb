package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func newTestProcessor(t *testing.T, handler http.HandlerFunc) *StripeProcessor {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	p, err := NewStripeProcessor("sk_test_123", backend)
	require.NoError(t, err)
	return p
}

func TestStripeProcessorGetCheckoutSession(t *testing.T) {
	var gotPath, gotAuth string
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_123",
			"object": "checkout.session",
			"payment_status": "paid",
			"status": "complete",
			"metadata": {"userId": "user_1", "credits": "50"}
		}`))
	})

	sess, err := p.GetCheckoutSession(context.Background(), "cs_test_123")
	require.NoError(t, err)

	assert.Equal(t, "/v1/checkout/sessions/cs_test_123", gotPath)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "cs_test_123", sess.ID)
	assert.True(t, sess.IsPaid())
	assert.Equal(t, "complete", sess.Status)
	subject, ok := sess.MetadataValue("userId")
	assert.True(t, ok)
	assert.Equal(t, "user_1", subject)
	credits, _ := sess.MetadataValue("credits")
	assert.Equal(t, "50", credits)
}

func TestStripeProcessorSessionNotFound(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {
			"code": "resource_missing",
			"message": "No such checkout.session: 'cs_missing'",
			"param": "id",
			"type": "invalid_request_error"
		}}`))
	})

	_, err := p.GetCheckoutSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestStripeProcessorUpstreamFailure(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "api_error"}}`))
	})

	_, err := p.GetCheckoutSession(context.Background(), "cs_test_123")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSessionNotFound))
}

func TestStripeProcessorRejectsEmptyReference(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("processor must not be called for an empty session id")
	})

	_, err := p.GetCheckoutSession(context.Background(), "  ")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestNewStripeProcessorRequiresKey(t *testing.T) {
	_, err := NewStripeProcessor(" ", nil)
	assert.Error(t, err)
}

func TestNormalizePaymentStatus(t *testing.T) {
	tests := []struct {
		in   stripe.CheckoutSessionPaymentStatus
		want PaymentStatus
	}{
		{in: stripe.CheckoutSessionPaymentStatusPaid, want: PaymentStatusPaid},
		{in: stripe.CheckoutSessionPaymentStatusUnpaid, want: PaymentStatusUnpaid},
		{in: stripe.CheckoutSessionPaymentStatusNoPaymentRequired, want: PaymentStatusNoPaymentRequired},
		{in: "something_new", want: PaymentStatusOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePaymentStatus(tt.in))
	}
}
