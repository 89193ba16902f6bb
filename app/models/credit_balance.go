package models

import "time"

// CreditBalance stores the spendable credit balance of a single subject.
// Version increases by one with every committed write and orders cached copies.
type CreditBalance struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	SubjectID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_credit_balances_subject" json:"subject_id"`
	Credits   int64     `gorm:"not null;default:0;check:chk_credit_balances_credits,credits >= 0" json:"credits"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
