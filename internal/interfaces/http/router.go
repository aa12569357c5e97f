package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/taskforge/core-api/internal/application/cqrs"
	"github.com/taskforge/core-api/internal/domain/repository"
	"github.com/taskforge/core-api/internal/platform/cache"
	"github.com/taskforge/core-api/internal/platform/security/token"
	"github.com/taskforge/core-api/internal/platform/tenantresolver"
	"github.com/taskforge/core-api/pkg/config"
)

// RouterDeps bundles every collaborator the router needs to assemble
// the middleware pipeline and wire the handlers.
type RouterDeps struct {
	Mediator *cqrs.Mediator
	Pool     *pgxpool.Pool
	Cache    cache.Cache
	Resolver *tenantresolver.Resolver
	Signer   *token.Signer
	Users    repository.UserRepository
	Cfg      *config.Config
	Log      zerolog.Logger
}

// Router assembles the nine-stage middleware pipeline in the order
// the caller sees it — correlation id and structured logging first,
// security headers and tenant/auth resolution next, rate limiting and
// caching closest to the handlers, CORS last before the route tree
// itself — and mounts every handler under /api/v1.
func Router(app *fiber.App, deps RouterDeps) {
	// recover is the true outermost stage: it turns a panic into an
	// error fiber.Config.ErrorHandler (ErrorHandler, below) can still
	// render through the normal envelope instead of dropping the
	// connection.
	app.Use(recover.New())
	app.Use(RequestLog(deps.Log))
	app.Use(SecurityHeaders)
	app.Use(TenantResolver(deps.Resolver))
	app.Use(Authentication(deps.Signer, deps.Resolver, deps.Users))
	app.Use(RateLimit(deps.Cache, deps.Cfg.Security.RateLimitPerMinute))
	app.Use(ResponseCache(deps.Cache))
	app.Use(PerformanceMonitor)
	app.Use(CORS(deps.Cfg.HTTP.AllowedOrigins))

	health := NewHealthHandler(deps.Pool)
	app.Get("/health", health.Health)
	app.Get("/ready", health.Ready)
	app.Get("/live", health.Live)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.Mediator)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Post("/mfa/enable", authHandler.EnableMFA)
	authGroup.Post("/mfa/verify", authHandler.VerifyMFA)
	authGroup.Post("/mfa/disable", authHandler.DisableMFA)

	tasks := api.Group("/tasks")
	taskHandler := NewTaskHandler(deps.Mediator)
	tasks.Post("/", taskHandler.Create)
	tasks.Get("/", taskHandler.List)
	tasks.Get("/reports/statistics", taskHandler.Statistics)
	tasks.Get("/:id", taskHandler.GetByID)
	tasks.Put("/:id", taskHandler.Update)
	tasks.Delete("/:id", taskHandler.Delete)
	tasks.Patch("/:id/assign", taskHandler.Assign)
	tasks.Patch("/:id/status", taskHandler.ChangeStatus)
	tasks.Post("/:id/comments", taskHandler.AddComment)
	tasks.Get("/:id/comments", taskHandler.ListComments)

	tenants := api.Group("/tenants")
	tenantHandler := NewTenantHandler(deps.Mediator)
	tenants.Post("/", tenantHandler.Create)
	tenants.Get("/", tenantHandler.List)
	tenants.Get("/:id", tenantHandler.GetByID)
	tenants.Patch("/:id", tenantHandler.UpdateSettings)
	tenants.Post("/:id/deactivate", tenantHandler.Deactivate)
	tenants.Post("/:id/reactivate", tenantHandler.Reactivate)

	auditHandler := NewAuditHandler(deps.Mediator)
	api.Get("/audit-log", auditHandler.List)
}
