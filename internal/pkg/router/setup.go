package router

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ManuelReschke/CreditFox/internal/pkg/credits"
	"github.com/ManuelReschke/CreditFox/internal/pkg/identity"
	"github.com/ManuelReschke/CreditFox/internal/pkg/logging"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Credits  *credits.Service
	Resolver identity.Resolver
	Log      *slog.Logger

	HealthChecks map[string]HealthCheck
	Gatherer     prometheus.Gatherer
	// Metrics are only served when both credentials are set.
	MetricsUser     string
	MetricsPassword string
	// DocsFile is the OpenAPI document behind /docs/api/v1; empty disables it.
	DocsFile string
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	// Ops routes first so health checks and metrics bypass identity resolution.
	setup(app, NewOpsRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
