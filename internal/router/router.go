package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/whrcat/cpplearn-api/internal/config"
	"github.com/whrcat/cpplearn-api/internal/handler"
	"github.com/whrcat/cpplearn-api/internal/middleware"
	"github.com/whrcat/cpplearn-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler           *handler.AuthHandler
	ProblemHandler        *handler.ProblemHandler
	CodeSubmissionHandler *handler.CodeSubmissionHandler
	CodeRunHandler        *handler.CodeRunHandler
	CapabilityHandler     *handler.CapabilityHandler
	DashboardHandler      *handler.DashboardHandler
	InterviewHandler      *handler.InterviewHandler
	KnowledgeHandler      *handler.KnowledgeHandler
	UploadHandler         *handler.UploadHandler
	JWTMiddleware         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.RegisterPublic(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", jwtMiddleware))
	}

	if deps.ProblemHandler != nil {
		deps.ProblemHandler.Register(api.Group("/problems", jwtMiddleware))
	}

	if deps.CodeSubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware,
			middleware.RateLimit("submissions", 10, time.Minute))
		deps.CodeSubmissionHandler.Register(submissions)
	}

	if deps.CodeRunHandler != nil {
		run := api.Group("/code/run", jwtMiddleware,
			middleware.RateLimit("code_run", 20, time.Minute))
		deps.CodeRunHandler.Register(run)
	}

	if deps.CapabilityHandler != nil {
		deps.CapabilityHandler.Register(api.Group("/capabilities", jwtMiddleware))
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", jwtMiddleware))
	}

	if deps.InterviewHandler != nil {
		deps.InterviewHandler.Register(api.Group("/interviews", jwtMiddleware))
	}

	if deps.KnowledgeHandler != nil {
		knowledge := api.Group("/knowledge", jwtMiddleware)
		deps.KnowledgeHandler.RegisterRead(knowledge)
		deps.KnowledgeHandler.RegisterWrite(knowledge.Group("", middleware.RequireRole("admin")))
	}

	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api.Group("/uploads", jwtMiddleware))
	}
}
