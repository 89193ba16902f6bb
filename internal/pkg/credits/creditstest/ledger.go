// Package creditstest provides in-memory collaborators for exercising the
// credits service without a database or payment processor.
package creditstest

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/CreditFox/app/models"
	"github.com/ManuelReschke/CreditFox/internal/pkg/credits"
)

// Ledger is an in-memory credits.Ledger. The event map enforces the same
// uniqueness the database index provides.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]models.CreditBalance
	events   map[string]models.ProcessedPaymentEvent

	// Injected failures, returned instead of touching state.
	GetBalanceErr    error
	UpsertBalanceErr error
	GetEventErr      error
	ApplyAwardErr    error

	GetBalanceCalls    int
	UpsertBalanceCalls int
	GetEventCalls      int
	ApplyAwardCalls    int
	// BalanceWrites counts committed balance mutations from any operation.
	BalanceWrites int
}

var _ credits.Ledger = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{
		balances: map[string]models.CreditBalance{},
		events:   map[string]models.ProcessedPaymentEvent{},
	}
}

// SeedBalance stores a balance without counting it as a write.
func (l *Ledger) SeedBalance(subjectID string, credits int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[subjectID] = models.CreditBalance{
		SubjectID: subjectID,
		Credits:   credits,
		Version:   l.balances[subjectID].Version + 1,
		UpdatedAt: time.Now().UTC(),
	}
}

// SeedEvent stores a processed event without counting it as a write.
func (l *Ledger) SeedEvent(event models.ProcessedPaymentEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[event.EventID] = event
}

// Balance returns the stored balance and whether a record exists.
func (l *Ledger) Balance(subjectID string) (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.balances[subjectID]
	return b.Credits, ok
}

// Events returns a copy of all processed events.
func (l *Ledger) Events() []models.ProcessedPaymentEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ProcessedPaymentEvent, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e)
	}
	return out
}

func (l *Ledger) GetBalance(ctx context.Context, subjectID string) (*models.CreditBalance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.GetBalanceCalls++
	if l.GetBalanceErr != nil {
		return nil, l.GetBalanceErr
	}
	b, ok := l.balances[subjectID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (l *Ledger) UpsertBalance(ctx context.Context, subjectID string, credits int64) (*models.CreditBalance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.UpsertBalanceCalls++
	if l.UpsertBalanceErr != nil {
		return nil, l.UpsertBalanceErr
	}
	b := models.CreditBalance{
		SubjectID: subjectID,
		Credits:   credits,
		Version:   l.balances[subjectID].Version + 1,
		UpdatedAt: time.Now().UTC(),
	}
	l.balances[subjectID] = b
	l.BalanceWrites++
	return &b, nil
}

func (l *Ledger) GetProcessedEvent(ctx context.Context, eventID string) (*models.ProcessedPaymentEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.GetEventCalls++
	if l.GetEventErr != nil {
		return nil, l.GetEventErr
	}
	e, ok := l.events[eventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (l *Ledger) ApplyAward(ctx context.Context, award credits.Award) (*models.CreditBalance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ApplyAwardCalls++
	if l.ApplyAwardErr != nil {
		return nil, l.ApplyAwardErr
	}
	if _, exists := l.events[award.EventID]; exists {
		return nil, credits.ErrAlreadyProcessed
	}

	current := l.balances[award.SubjectID]
	b := models.CreditBalance{
		SubjectID: award.SubjectID,
		Credits:   current.Credits + award.Credits,
		Version:   current.Version + 1,
		UpdatedAt: award.ProcessedAt,
	}
	l.balances[award.SubjectID] = b
	l.events[award.EventID] = models.ProcessedPaymentEvent{
		EventID:        award.EventID,
		SubjectID:      award.SubjectID,
		CreditsAwarded: award.Credits,
		ProcessedAt:    award.ProcessedAt,
	}
	l.BalanceWrites++
	return &b, nil
}
