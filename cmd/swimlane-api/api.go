// Package main provides the Swimlane API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dukex/swimlane/pkg/eventbus"
	"github.com/dukex/swimlane/pkg/events"
	"github.com/dukex/swimlane/pkg/log"
	"github.com/dukex/swimlane/pkg/otelhelper"
	"github.com/dukex/swimlane/pkg/persistence"
	"github.com/dukex/swimlane/pkg/quality"
	"github.com/dukex/swimlane/pkg/services"
	"github.com/dukex/swimlane/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validate    *validator.Validate
	thresholds  quality.Thresholds
	logs        *log.RingBuffer
	tracer      trace.Tracer
}

type Option func(*API)

func WithThresholds(thresholds quality.Thresholds) Option {
	return func(a *API) {
		a.thresholds = thresholds
	}
}

func WithLogBuffer(logs *log.RingBuffer) Option {
	return func(a *API) {
		a.logs = logs
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(a *API) {
		a.tracer = tracer
	}
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	opts ...Option,
) *API {
	api := &API{
		persistence: persistence,
		logger:      logger,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		thresholds:  quality.DefaultThresholds(),
		logs:        log.NewRingBuffer(log.DefaultBufferSize),
		tracer:      otelhelper.NoopTracer(),
	}

	for _, opt := range opts {
		opt(api)
	}

	return api
}

func (a *API) App() *fiber.App {
	processService := services.NewProcess(a.persistence,
		services.WithEventPublisher(a.eventBus),
		services.WithValidator(quality.New(a.thresholds)),
		services.WithTracer(a.tracer),
		services.WithLogger(a.logger),
	)

	handlers := web.NewAPIHandlers(processService, a.validate, a.logs)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Swimlane API")
	})

	app.Post("/build", handlers.Build)
	app.Post("/validate", handlers.Validate)
	app.Post("/passport", handlers.Passport)

	p := app.Group("/processes")
	p.Get("/", handlers.GetProcesses)
	p.Post("/generate", handlers.GenerateProcess)
	p.Post("/import", handlers.ImportProcess)
	p.Get("/:id", handlers.GetProcess)
	p.Delete("/:id", handlers.DeleteProcess)
	p.Get("/:id/quality", handlers.GetProcessQuality)
	p.Get("/:id/passport", handlers.GetProcessPassport)
	p.Get("/:id/snapshots", handlers.GetProcessSnapshots)
	p.Post("/:id/snapshots/:snapshotId/rollback", handlers.RollbackProcess)

	app.Get("/logs", handlers.GetLogs)
	app.Get("/health", handlers.HealthCheck)

	return app
}

// WatchEvents logs every lifecycle event the bus delivers, so that they show up in GET /logs.
func (a *API) WatchEvents(ctx context.Context) error {
	eventTypes := []events.EventType{
		events.ProcessGeneratedEvent,
		events.ProcessImportedEvent,
		events.ProcessRejectedEvent,
		events.ProcessRolledBackEvent,
		events.ProcessDeletedEvent,
		events.SnapshotsPrunedEvent,
	}

	for _, eventType := range eventTypes {
		err := a.eventBus.Handle(eventType, func(ctx context.Context, event any) error {
			a.logger.InfoContext(ctx, "Process event received", "event_type", eventType, "event", event)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return a.eventBus.Subscribe(ctx)
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
