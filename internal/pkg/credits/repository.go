package credits

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/CreditFox/app/models"
)

// Ledger provides the store operations used by the credits service. Lookups
// of missing rows return gorm.ErrRecordNotFound.
type Ledger interface {
	GetBalance(ctx context.Context, subjectID string) (*models.CreditBalance, error)
	UpsertBalance(ctx context.Context, subjectID string, credits int64) (*models.CreditBalance, error)
	GetProcessedEvent(ctx context.Context, eventID string) (*models.ProcessedPaymentEvent, error)
	// ApplyAward adds award.Credits to the subject's balance and records the
	// processed event atomically. It returns ErrAlreadyProcessed, and changes
	// nothing, when the event id is already recorded.
	ApplyAward(ctx context.Context, award Award) (*models.CreditBalance, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a ledger backed by GORM.
func NewRepository(db *gorm.DB) Ledger {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetBalance(ctx context.Context, subjectID string) (*models.CreditBalance, error) {
	var balance models.CreditBalance
	err := r.db.WithContext(ctx).Where("subject_id = ?", subjectID).First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *gormRepository) UpsertBalance(ctx context.Context, subjectID string, credits int64) (*models.CreditBalance, error) {
	now := time.Now().UTC()
	balance := &models.CreditBalance{
		SubjectID: subjectID,
		Credits:   credits,
		Version:   1,
		UpdatedAt: now,
	}
	db := r.db.WithContext(ctx)
	err := upsertBalance(db, balance, map[string]interface{}{
		"credits":    credits,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}

	// Ensure ID and timestamps are populated after upsert.
	var stored models.CreditBalance
	if err := db.Where("subject_id = ?", subjectID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *gormRepository) GetProcessedEvent(ctx context.Context, eventID string) (*models.ProcessedPaymentEvent, error) {
	var event models.ProcessedPaymentEvent
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) ApplyAward(ctx context.Context, award Award) (*models.CreditBalance, error) {
	var out models.CreditBalance
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The event row goes first: a concurrent transaction holding the same
		// event id blocks us on the unique index until it commits or rolls back.
		event := &models.ProcessedPaymentEvent{
			EventID:        award.EventID,
			SubjectID:      award.SubjectID,
			CreditsAwarded: award.Credits,
			ProcessedAt:    award.ProcessedAt,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).Create(event)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		// Increment in the statement itself so awards for different sessions
		// of the same subject never overwrite each other.
		balance := &models.CreditBalance{
			SubjectID: award.SubjectID,
			Credits:   award.Credits,
			Version:   1,
			UpdatedAt: award.ProcessedAt,
		}
		err := upsertBalance(tx, balance, map[string]interface{}{
			"credits":    gorm.Expr("credit_balances.credits + ?", award.Credits),
			"updated_at": award.ProcessedAt,
		})
		if err != nil {
			return err
		}

		return tx.Where("subject_id = ?", award.SubjectID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// upsertBalance inserts balance or applies updates to the existing row of the
// subject. Every update bumps the row version.
func upsertBalance(db *gorm.DB, balance *models.CreditBalance, updates map[string]interface{}) error {
	updates["version"] = gorm.Expr("credit_balances.version + 1")
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(balance).Error
}
