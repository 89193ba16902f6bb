package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// APIKey is a hashed credential that resolves to a subject for machine clients.
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SubjectID  string     `gorm:"type:varchar(191);not null;index" json:"subject_id"`
	Prefix     string     `gorm:"type:varchar(20);not null;index" json:"prefix"`
	Hash       string     `gorm:"type:char(64);not null;uniqueIndex:ux_api_keys_hash" json:"-"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at"`
}

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const apiKeyPrefix = "cfx_"

// NewAPIKey generates key material for a subject and returns the record
// together with the raw secret. The raw secret is not recoverable later.
func NewAPIKey(subjectID string) (*APIKey, string, error) {
	subject := strings.TrimSpace(subjectID)
	if subject == "" {
		return nil, "", fmt.Errorf("subject id is required")
	}
	rawKey, prefix, hash, err := generateAPIKeyMaterial()
	if err != nil {
		return nil, "", err
	}
	return &APIKey{
		SubjectID: subject,
		Prefix:    prefix,
		Hash:      hash,
		CreatedAt: time.Now(),
	}, rawKey, nil
}

// IsActive reports whether the key has not been revoked.
func (k *APIKey) IsActive() bool {
	return k != nil && k.Hash != "" && k.RevokedAt == nil
}

// Revoke marks the key as revoked without deleting the record.
func (k *APIKey) Revoke() {
	now := time.Now()
	k.RevokedAt = &now
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

func generateAPIKeyMaterial() (string, string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", err
	}
	encoded := strings.ToLower(apiKeyEncoding.EncodeToString(b))
	rawKey := apiKeyPrefix + encoded
	if len(rawKey) < 12 {
		return "", "", "", fmt.Errorf("api key generation failed: key too short")
	}
	prefix := rawKey[:min(len(rawKey), 16)]
	return rawKey, prefix, HashAPIKey(rawKey), nil
}
