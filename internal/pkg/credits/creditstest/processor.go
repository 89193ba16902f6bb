package creditstest

import (
	"context"
	"sync"

	"github.com/ManuelReschke/CreditFox/internal/pkg/payments"
)

// Processor serves checkout sessions from a map and counts lookups.
type Processor struct {
	mu       sync.Mutex
	sessions map[string]*payments.CheckoutSession
	calls    int

	// Err, when set, is returned for every lookup.
	Err error
}

var _ payments.Processor = (*Processor)(nil)

func NewProcessor() *Processor {
	return &Processor{sessions: map[string]*payments.CheckoutSession{}}
}

// AddSession registers a session and returns the processor for chaining.
func (p *Processor) AddSession(sess *payments.CheckoutSession) *Processor {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[sess.ID] = sess
	return p
}

// PaidSession builds a paid session owned by subjectID carrying credits.
func PaidSession(id, subjectID, credits string) *payments.CheckoutSession {
	return &payments.CheckoutSession{
		ID:            id,
		PaymentStatus: payments.PaymentStatusPaid,
		Status:        "complete",
		Metadata:      map[string]string{"userId": subjectID, "credits": credits},
	}
}

func (p *Processor) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *Processor) GetCheckoutSession(ctx context.Context, sessionID string) (*payments.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.Err != nil {
		return nil, p.Err
	}
	sess, ok := p.sessions[sessionID]
	if !ok {
		return nil, payments.ErrSessionNotFound
	}
	return sess, nil
}
