package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/CreditFox/app/models"
	"github.com/ManuelReschke/CreditFox/internal/pkg/logging"
)

// KeyStore is the part of the API key repository the resolver needs.
type KeyStore interface {
	GetActiveByHash(ctx context.Context, hash string) (*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id uint, at time.Time) error
}

// APIKeyResolver authenticates machine clients presenting an API key in
// X-API-Key or as a bearer token.
type APIKeyResolver struct {
	keys KeyStore
	log  *slog.Logger
}

func NewAPIKeyResolver(keys KeyStore, log *slog.Logger) *APIKeyResolver {
	if log == nil {
		log = logging.Discard()
	}
	return &APIKeyResolver{keys: keys, log: log}
}

func (r *APIKeyResolver) Resolve(c *fiber.Ctx) (Identity, error) {
	raw := extractAPIKeyFromHeader(c)
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}

	key, err := r.keys.GetActiveByHash(c.UserContext(), models.HashAPIKey(raw))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, ErrUnauthenticated
	}
	if err != nil {
		return Identity{}, fmt.Errorf("api key lookup: %w", err)
	}
	if !key.IsActive() {
		return Identity{}, ErrUnauthenticated
	}

	// Refresh last-used timestamp best-effort.
	if err := r.keys.TouchLastUsed(c.UserContext(), key.ID, time.Now().UTC()); err != nil {
		r.log.Warn("failed to update api key usage timestamp", "key_prefix", key.Prefix, "error", err)
	}
	return Identity{SubjectID: key.SubjectID, Method: MethodAPIKey}, nil
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
