package api

import (
	"context"
	"log/slog"
	"time"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saturnino-fabrica-de-software/mpd/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/mpd/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/mpd/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/mpd/internal/database"
	"github.com/saturnino-fabrica-de-software/mpd/internal/metrics"
	"github.com/saturnino-fabrica-de-software/mpd/internal/ws"
)

// Options are the HTTP-level settings of the router.
type Options struct {
	WebOrigin          string
	RateLimitPerMinute int
	DevReceiverSecret  string
	SignatureTolerance time.Duration
}

// Dependencies are the services behind the routes. DB may be nil, in which
// case health checks skip the database. Live may be nil, in which case the
// delivery feed is not mounted.
type Dependencies struct {
	DB        database.Pinger
	Orders    handler.OrderService
	Payouts   handler.PayoutService
	Settings  handler.SettingsService
	Endpoints handler.WebhookEndpointService
	Tester    handler.WebhookTester
	Live      *ws.Hub
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	opts        Options
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
	stopLive    context.CancelFunc
}

func NewRouter(logger *slog.Logger, opts Options, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "MPD API",
	})

	return &Router{
		app:    app,
		logger: logger,
		opts:   opts,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Metrics())
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.opts.WebOrigin,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Prometheus exposition
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	var db database.Pinger
	if r.deps != nil {
		db = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Development receiver sits outside the rate limit so fan-outs to it are
	// never throttled by the API's own traffic
	receiver := handler.NewReceiverHandler(r.opts.DevReceiverSecret, r.opts.SignatureTolerance, r.logger)
	r.app.Post("/dev/receiver", receiver.Receive)

	if r.deps == nil {
		return
	}

	api := r.app.Group("")
	if r.opts.RateLimitPerMinute > 0 {
		r.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Max:    r.opts.RateLimitPerMinute,
			Window: time.Minute,
		})
		api.Use(r.rateLimiter.Handler())
	}

	// Orders
	orderHandler := handler.NewOrderHandler(r.deps.Orders, r.logger)
	api.Post("/orders", orderHandler.Create)
	api.Get("/orders", orderHandler.List)
	api.Post("/orders/:id/confirm", orderHandler.Confirm)
	api.Post("/orders/:id/fail", orderHandler.Fail)

	// Payouts
	payoutHandler := handler.NewPayoutHandler(r.deps.Payouts)
	api.Post("/payouts", payoutHandler.Create)
	api.Post("/payouts/:id/send", payoutHandler.Send)
	api.Get("/payouts", payoutHandler.List)

	// Settings
	settingsHandler := handler.NewSettingsHandler(r.deps.Settings)
	api.Get("/settings/api-key", settingsHandler.APIKey)
	api.Post("/settings/rotate", settingsHandler.Rotate)

	// Webhooks
	webhookHandler := handler.NewWebhookHandler(r.deps.Endpoints, r.deps.Tester, r.logger)
	api.Post("/webhooks/seed", webhookHandler.Seed)
	api.Post("/webhooks/test", webhookHandler.Test)
	api.Get("/webhooks/endpoints", webhookHandler.Endpoints)
	api.Patch("/webhooks/endpoints/:id", webhookHandler.UpdateEndpoint)
	api.Get("/webhooks/deliveries", webhookHandler.Deliveries)

	// Live delivery feed
	if r.deps.Live != nil {
		ctx, cancel := context.WithCancel(context.Background())
		r.stopLive = cancel
		go r.deps.Live.Run(ctx)
		api.Get("/webhooks/live", ws.UpgradeMiddleware(), ws.Handler(r.deps.Live))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	// Closing the hub ends every socket's write pump
	if r.stopLive != nil {
		r.stopLive()
	}

	return r.app.Shutdown()
}
