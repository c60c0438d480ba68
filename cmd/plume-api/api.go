// Package main provides the Plume API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/plumehq/plume/pkg/eventbus"
	"github.com/plumehq/plume/pkg/persistence"
	"github.com/plumehq/plume/pkg/registry"
	"github.com/plumehq/plume/pkg/services"
	"github.com/plumehq/plume/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence, a.registry, a.eventBus)
	publishingService := services.NewPublishing(a.persistence, a.eventBus)
	parameterService := services.NewParameter(a.persistence, a.eventBus, a.tracer)

	handlers := web.NewAPIHandlers(workflowService, publishingService, parameterService, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Plume API")
	})

	app.Get("/block-types", handlers.GetBlockTypes)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/publish", handlers.PublishWorkflow)
	w.Post("/groups/:groupId/create-draft", handlers.CreateDraftFromPublished)

	// Parameter endpoints:
	w.Get("/:id/parameters", handlers.GetParameters)
	w.Post("/:id/parameters", handlers.CreateParameter)
	w.Patch("/:id/parameters/:key", handlers.UpdateParameter)
	w.Post("/:id/parameters/:key/rename", handlers.RenameParameter)
	w.Delete("/:id/parameters/:key", handlers.DeleteParameter)
	w.Get("/:id/parameters/:key/affected-blocks", handlers.GetAffectedBlocks)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
