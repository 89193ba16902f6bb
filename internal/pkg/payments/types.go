package payments

import (
	"context"
	"errors"
)

// PaymentStatus mirrors the processor's payment status of a checkout session.
type PaymentStatus string

const (
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusUnpaid            PaymentStatus = "unpaid"
	PaymentStatusNoPaymentRequired PaymentStatus = "no_payment_required"
	PaymentStatusOther             PaymentStatus = "other"
)

// ErrSessionNotFound is returned when the processor has no session for the reference.
var ErrSessionNotFound = errors.New("checkout session not found")

// CheckoutSession is the read-only view of a processor checkout session.
type CheckoutSession struct {
	ID            string
	PaymentStatus PaymentStatus
	Status        string
	Metadata      map[string]string
}

// IsPaid reports whether the processor considers the session paid.
func (s *CheckoutSession) IsPaid() bool {
	return s != nil && s.PaymentStatus == PaymentStatusPaid
}

// MetadataValue returns the metadata entry for key.
func (s *CheckoutSession) MetadataValue(key string) (string, bool) {
	if s == nil || s.Metadata == nil {
		return "", false
	}
	v, ok := s.Metadata[key]
	return v, ok
}

// Processor retrieves checkout sessions from the payment processor.
type Processor interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}
