package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/pinpad/internal/config"
	"github.com/congo-pay/pinpad/internal/identity"
	"github.com/congo-pay/pinpad/internal/middleware"
)

const registerAttemptsPerMinute = 10

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Cache  *redis.Client
	Logger *slog.Logger
	// Registrations defaults to an in-memory repository.
	Registrations identity.Repository
}

// Setup configures middlewares and the stub registration routes. Redis-backed
// middleware is only installed when a cache is configured.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Logger != nil {
		app.Use(middleware.Audit(d.Logger, healthPath))
	}

	RegisterHealthRoutes(app, d)

	repo := d.Registrations
	if repo == nil {
		repo = identity.NewMemoryRepository()
	}
	handler := identity.NewHandler(repo, d.Logger)

	user := app.Group("/user")
	if d.Cache != nil {
		user.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterUserRoutes(user, handler, middleware.RegisterRateLimit(d.Cache, registerAttemptsPerMinute))

	return nil
}
