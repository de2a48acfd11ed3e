package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bcpschool/portal-api/internal/config"
	"github.com/bcpschool/portal-api/internal/handler"
	"github.com/bcpschool/portal-api/internal/middleware"
	"github.com/bcpschool/portal-api/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	AnnouncementHandler *handler.AnnouncementHandler
	AuthGuard           fiber.Handler
}

// Register wires the HTTP routes into the fiber application. Every group past
// /api/auth sits behind the bearer-token guard; role restrictions attach per
// route inside the handlers.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use the provided auth guard, or a no-op if nil.
	authGuard := deps.AuthGuard
	if authGuard == nil {
		authGuard = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", authGuard, middleware.RequireRole(models.RoleAdmin))
		deps.UserHandler.Register(users)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", authGuard)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", authGuard)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.AnnouncementHandler != nil {
		announcements := api.Group("/announcements", authGuard)
		deps.AnnouncementHandler.Register(announcements)
	}
}
