package router

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

type OpsRouter struct {
	deps Dependencies
}

func (h OpsRouter) InstallRouter(app *fiber.App) {
	app.Get("/healthz", h.handleHealth)

	if h.deps.Gatherer != nil {
		if h.deps.MetricsUser != "" && h.deps.MetricsPassword != "" {
			app.Get("/metrics", basicauth.New(basicauth.Config{
				Users: map[string]string{
					h.deps.MetricsUser: h.deps.MetricsPassword,
				},
			}), adaptor.HTTPHandler(promhttp.HandlerFor(h.deps.Gatherer, promhttp.HandlerOpts{})))
		} else {
			h.deps.Log.Warn("metrics endpoint disabled, METRICS_USER and METRICS_PASSWORD are not set")
		}
	}

	// SWAGGER / OPENAPI
	if h.deps.DocsFile != "" {
		if _, err := os.Stat(h.deps.DocsFile); err != nil {
			h.deps.Log.Warn("api docs disabled", "file", h.deps.DocsFile, "error", err)
			return
		}
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: h.deps.DocsFile,
			Path:     "v1",
		}))
	}
}

// handleHealth runs every check concurrently and reports each result.
func (h OpsRouter) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.deps.HealthChecks))
		healthy = true
	)
	var g errgroup.Group
	for name, check := range h.deps.HealthChecks {
		g.Go(func() error {
			status := "ok"
			if err := check(ctx); err != nil {
				status = err.Error()
				h.deps.Log.Warn("health check failed", "check", name, "error", err)
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = status
			if status != "ok" {
				healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()

	code := fiber.StatusOK
	overall := "ok"
	if !healthy {
		code = fiber.StatusServiceUnavailable
		overall = "unavailable"
	}
	return c.Status(code).JSON(fiber.Map{"status": overall, "checks": results})
}

func NewOpsRouter(deps Dependencies) *OpsRouter {
	return &OpsRouter{deps: deps}
}
