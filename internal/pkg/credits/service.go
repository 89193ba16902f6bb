package credits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/CreditFox/app/models"
	"github.com/ManuelReschke/CreditFox/internal/pkg/logging"
	"github.com/ManuelReschke/CreditFox/internal/pkg/metrics"
	"github.com/ManuelReschke/CreditFox/internal/pkg/payments"
)

const (
	DefaultSubjectMetadataKey = "userId"
	DefaultCreditsMetadataKey = "credits"
)

// Service reads and sets credit balances and credits verified checkout
// sessions exactly once.
type Service struct {
	ledger    Ledger
	processor payments.Processor
	cache     BalanceCache
	metrics   *metrics.Metrics
	log       *slog.Logger
	now       func() time.Time

	subjectKey string
	creditsKey string
}

// Option customizes a Service.
type Option func(*Service)

// WithCache enables the write-through balance cache.
func WithCache(cache BalanceCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetadataKeys overrides the checkout metadata keys carrying the subject
// id and the credit quantity. Empty values keep the defaults.
func WithMetadataKeys(subjectKey, creditsKey string) Option {
	return func(s *Service) {
		if k := strings.TrimSpace(subjectKey); k != "" {
			s.subjectKey = k
		}
		if k := strings.TrimSpace(creditsKey); k != "" {
			s.creditsKey = k
		}
	}
}

// WithClock overrides the time source used for processed-event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a credits service from injected collaborators.
func NewService(ledger Ledger, processor payments.Processor, opts ...Option) *Service {
	s := &Service{
		ledger:     ledger,
		processor:  processor,
		log:        logging.Discard(),
		now:        time.Now,
		subjectKey: DefaultSubjectMetadataKey,
		creditsKey: DefaultCreditsMetadataKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetBalance returns the subject's balance. A subject without a record has 0 credits.
func (s *Service) GetBalance(ctx context.Context, subjectID string) (int64, error) {
	subject := strings.TrimSpace(subjectID)
	if subject == "" {
		return 0, ErrUnauthorized
	}

	if s.cache != nil {
		credits, ok, err := s.cache.Get(ctx, subject)
		if err != nil {
			s.log.Warn("balance cache read failed", "subject_id", subject, "error", err)
		}
		s.metrics.CacheLookup(ok)
		if ok {
			return credits, nil
		}
	}

	balance, err := s.ledger.GetBalance(ctx, subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load balance: %w", err)
	}
	s.storeCache(ctx, balance)
	return balance.Credits, nil
}

// SetBalance overwrites the subject's balance. It is a direct set, not an increment.
func (s *Service) SetBalance(ctx context.Context, subjectID string, credits int64) (int64, error) {
	subject := strings.TrimSpace(subjectID)
	if subject == "" {
		return 0, ErrUnauthorized
	}
	if credits < 0 {
		return 0, ErrInvalidCredits
	}

	balance, err := s.ledger.UpsertBalance(ctx, subject, credits)
	if err != nil {
		return 0, fmt.Errorf("upsert balance: %w", err)
	}
	s.metrics.BalanceWritten()
	s.storeCache(ctx, balance)
	return balance.Credits, nil
}

// VerifyAndCredit confirms a checkout session with the payment processor and
// credits the subject once per session. The processed-event lookup runs
// before any processor call or mutation so client retries are cheap and safe.
func (s *Service) VerifyAndCredit(ctx context.Context, subjectID, sessionID string) (*VerifyResult, error) {
	subject := strings.TrimSpace(subjectID)
	if subject == "" {
		return nil, ErrUnauthorized
	}
	ref := strings.TrimSpace(sessionID)
	if ref == "" {
		return nil, s.reject(ErrMissingSessionID)
	}

	log := s.log.With("subject_id", subject, "session_id", ref)
	eventID := models.EventIDForSession(ref)

	_, err := s.ledger.GetProcessedEvent(ctx, eventID)
	switch {
	case err == nil:
		log.Info("checkout session already processed")
		s.metrics.VerificationOutcome(metrics.OutcomeAlreadyProcessed)
		return &VerifyResult{AlreadyProcessed: true}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.metrics.VerificationOutcome(metrics.OutcomeFailed)
		return nil, fmt.Errorf("check processed event %s: %w", eventID, err)
	}

	log.Info("verifying checkout session")
	sess, err := s.processor.GetCheckoutSession(ctx, ref)
	if err != nil {
		log.Warn("retrieve checkout session failed", "error", err)
		return nil, s.reject(ErrSessionNotFound)
	}

	owner, _ := sess.MetadataValue(s.subjectKey)
	if strings.TrimSpace(owner) != subject {
		log.Warn("checkout session belongs to another subject", "session_subject", owner)
		return nil, s.reject(ErrSessionMismatch)
	}

	if !sess.IsPaid() {
		log.Warn("payment not completed", "payment_status", sess.PaymentStatus, "status", sess.Status)
		return nil, s.reject(ErrPaymentNotCompleted)
	}

	raw, _ := sess.MetadataValue(s.creditsKey)
	quantity, err := parseCreditsAmount(raw)
	if err != nil {
		log.Warn("invalid credits amount in session metadata", "credits", raw, "error", err)
		return nil, s.reject(ErrInvalidCreditsAmount)
	}

	balance, err := s.ledger.ApplyAward(ctx, Award{
		EventID:     eventID,
		SubjectID:   subject,
		Credits:     quantity,
		ProcessedAt: s.now().UTC(),
	})
	if errors.Is(err, ErrAlreadyProcessed) {
		log.Info("checkout session credited by a concurrent request")
		s.metrics.VerificationOutcome(metrics.OutcomeAlreadyProcessed)
		return &VerifyResult{AlreadyProcessed: true}, nil
	}
	if err != nil {
		s.metrics.VerificationOutcome(metrics.OutcomeFailed)
		return nil, fmt.Errorf("apply award %s: %w", eventID, err)
	}

	s.metrics.VerificationOutcome(metrics.OutcomeCredited)
	s.metrics.CreditsAwarded(quantity)
	s.storeCache(ctx, balance)
	log.Info("credits awarded", "credits", quantity, "balance", balance.Credits)
	return &VerifyResult{CreditsAwarded: quantity, Balance: balance.Credits}, nil
}

func (s *Service) reject(err error) error {
	s.metrics.VerificationOutcome(metrics.OutcomeRejected)
	return err
}

// storeCache offers a ledger read to the cache. The cache keeps whichever copy
// carries the higher row version, so a slow reader cannot replace a newer
// balance. If the write fails the entry is dropped and readers fall back to
// the ledger.
func (s *Service) storeCache(ctx context.Context, balance *models.CreditBalance) {
	if s.cache == nil {
		return
	}
	subjectID := balance.SubjectID
	if err := s.cache.Set(ctx, subjectID, balance.Credits, balance.Version); err != nil {
		s.log.Warn("balance cache write failed", "subject_id", subjectID, "error", err)
		if err := s.cache.Delete(ctx, subjectID); err != nil {
			s.log.Warn("balance cache invalidation failed", "subject_id", subjectID, "error", err)
		}
	}
}

func parseCreditsAmount(raw string) (int64, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, errors.New("missing credits metadata")
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("credits must be positive, got %d", n)
	}
	return n, nil
}
