package session

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/CreditFox/internal/pkg/env"
)

// KeySubjectID is the session key the login frontend writes the authenticated
// subject id under.
const KeySubjectID = "subject_id"

// NewSessionStore returns a Fiber session store that reads the sessions the
// login frontend writes to redis. It shares host and credentials with the
// cache client but uses its own database.
func NewSessionStore(cacheClient *goredis.Client) *session.Store {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		// Prefer password from the underlying client if present
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: env.GetEnvInt("SESSION_DB", 1),
		Reset:    false,
	})

	return NewStoreWithStorage(storage)
}

// NewStoreWithStorage builds the store on top of any fiber.Storage. A nil
// storage selects Fiber's in-memory storage.
func NewStoreWithStorage(storage fiber.Storage) *session.Store {
	cfg := session.Config{
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		Expiration:     env.GetEnvDuration("SESSION_TTL", time.Hour),
		KeyLookup:      "cookie:" + env.GetEnv("SESSION_COOKIE", "session_id"),
	}
	if storage != nil {
		cfg.Storage = storage
	}
	return session.New(cfg)
}
