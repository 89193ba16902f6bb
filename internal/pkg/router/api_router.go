package router

import (
	"github.com/gofiber/fiber/v2"

	apiv1 "github.com/ManuelReschke/CreditFox/internal/api/v1"
	"github.com/ManuelReschke/CreditFox/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	apiServer := apiv1.NewAPIServer(h.deps.Credits, h.deps.Log)

	api := app.Group("/api",
		middleware.UserContextMiddleware(h.deps.Resolver, h.deps.Log),
		middleware.RequireSubject(h.deps.Log),
	)

	// The unversioned routes keep existing frontends working.
	apiServer.RegisterHandlers(api)

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer.RegisterHandlers(v1)
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
