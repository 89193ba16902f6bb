package models

import (
	"strings"
	"time"
)

// ProcessedEventPrefix is prepended to a checkout session reference to form the
// event id of its processed marker.
const ProcessedEventPrefix = "session_"

// ProcessedPaymentEvent marks a checkout session as credited. The unique index
// on EventID guarantees at most one award per session.
type ProcessedPaymentEvent struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	EventID        string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_processed_payment_events_event" json:"event_id"`
	SubjectID      string    `gorm:"type:varchar(191);not null;index" json:"subject_id"`
	CreditsAwarded int64     `gorm:"not null" json:"credits_awarded"`
	ProcessedAt    time.Time `gorm:"not null;index" json:"processed_at"`
}

// EventIDForSession derives the canonical processed-event key for a checkout session.
func EventIDForSession(sessionID string) string {
	return ProcessedEventPrefix + strings.TrimSpace(sessionID)
}
