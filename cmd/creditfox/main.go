package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ManuelReschke/CreditFox/app/repository"
	"github.com/ManuelReschke/CreditFox/internal/pkg/cache"
	"github.com/ManuelReschke/CreditFox/internal/pkg/credits"
	"github.com/ManuelReschke/CreditFox/internal/pkg/database"
	"github.com/ManuelReschke/CreditFox/internal/pkg/env"
	"github.com/ManuelReschke/CreditFox/internal/pkg/identity"
	"github.com/ManuelReschke/CreditFox/internal/pkg/logging"
	"github.com/ManuelReschke/CreditFox/internal/pkg/metrics"
	"github.com/ManuelReschke/CreditFox/internal/pkg/payments"
	"github.com/ManuelReschke/CreditFox/internal/pkg/router"
	"github.com/ManuelReschke/CreditFox/internal/pkg/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	envErr := env.SetupEnvFile()
	log := logging.NewFromEnv()
	if envErr != nil {
		log.Info("no .env file loaded, using process environment")
	}

	db, err := database.SetupDatabase(database.ConfigFromEnv(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}()

	cacheClient := cache.SetupCache(cache.Options(), log)
	defer func() {
		if err := cacheClient.Close(); err != nil {
			log.Warn("failed to close cache client", "error", err)
		}
	}()

	processor, err := payments.NewStripeProcessorFromEnv()
	if err != nil {
		return err
	}

	app := NewApplication(db, cacheClient, processor, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", addr)
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// NewApplication wires the service graph into a Fiber app.
func NewApplication(db *gorm.DB, cacheClient *redis.Client, processor payments.Processor, log *slog.Logger) *fiber.App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repos := repository.NewFactory(db).GetRepositories()
	svc := credits.NewService(repos.Ledger, processor,
		credits.WithCache(credits.NewRedisBalanceCache(cacheClient, env.GetEnvDuration("BALANCE_CACHE_TTL", 15*time.Second))),
		credits.WithMetrics(metrics.MustNewMetrics(reg)),
		credits.WithLogger(log),
		credits.WithMetadataKeys(
			env.GetEnv("STRIPE_METADATA_SUBJECT_KEY", credits.DefaultSubjectMetadataKey),
			env.GetEnv("STRIPE_METADATA_CREDITS_KEY", credits.DefaultCreditsMetadataKey),
		),
	)

	// API keys first: a machine client never carries a browser session.
	resolver := identity.Chain{
		identity.NewAPIKeyResolver(repos.APIKey, log),
		identity.NewSessionResolver(session.NewSessionStore(cacheClient)),
	}
	if header := env.GetEnv("TRUSTED_SUBJECT_HEADER", ""); header != "" {
		log.Warn("trusting upstream subject header", "header", header)
		resolver = append(resolver, identity.NewHeaderResolver(header))
	}

	docsFile, err := findDocsFile()
	if err != nil {
		log.Warn("openapi document not found, /docs disabled", "error", err)
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName:      "creditfox",
		BodyLimit:    64 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// recovery, request ids and logging
	app.Use(
		recover.New(),
		requestid.New(requestid.Config{Generator: uuid.NewString}),
		logger.New(logger.Config{Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n"}),
	)

	router.InstallRouter(app, router.Dependencies{
		Credits:  svc,
		Resolver: resolver,
		Log:      log,
		HealthChecks: map[string]router.HealthCheck{
			"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
			"cache":    func(ctx context.Context) error { return cacheClient.Ping(ctx).Err() },
		},
		Gatherer:        reg,
		MetricsUser:     env.GetEnv("METRICS_USER", ""),
		MetricsPassword: env.GetEnv("METRICS_PASSWORD", ""),
		DocsFile:        docsFile,
	})

	return app
}

// findDocsFile locates the OpenAPI document relative to the usual working directories.
func findDocsFile() (string, error) {
	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/creditfox to project root
		"../../../", // Fallback
	}
	for _, path := range basePaths {
		candidate := path + "public/docs/v1/openapi.yml"
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.New("public/docs/v1/openapi.yml not found")
}
