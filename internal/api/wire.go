package api

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/mpd/internal/config"
	"github.com/saturnino-fabrica-de-software/mpd/internal/event"
	"github.com/saturnino-fabrica-de-software/mpd/internal/repository"
	"github.com/saturnino-fabrica-de-software/mpd/internal/service"
	"github.com/saturnino-fabrica-de-software/mpd/internal/webhook"
	"github.com/saturnino-fabrica-de-software/mpd/internal/ws"
)

// NewDependencies builds the repositories, the webhook engine and the
// services on top of pool.
func NewDependencies(pool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) *Dependencies {
	// Repositories
	eventRepo := repository.NewEventRepository(pool)
	endpointRepo := repository.NewWebhookEndpointRepository(pool)
	deliveryRepo := repository.NewDeliveryRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	payoutRepo := repository.NewPayoutRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)

	// Webhook engine, reporting every attempt to the live feed
	live := ws.NewHub()
	engine := webhook.NewService(
		endpointRepo,
		webhook.NewClient(cfg.WebhookTimeout()),
		webhook.NewRecorder(deliveryRepo),
		logger,
		webhook.WithWorkers(cfg.WebhookFanoutWorkers),
		webhook.WithObserver(live),
	)
	publisher := webhook.NewPublisher(event.NewFactory(eventRepo), engine, endpointRepo, logger)

	return &Dependencies{
		DB:        pool,
		Orders:    service.NewOrderService(orderRepo, publisher, logger),
		Payouts:   service.NewPayoutService(payoutRepo),
		Settings:  service.NewSettingsService(apiKeyRepo),
		Endpoints: service.NewWebhookEndpointService(endpointRepo, deliveryRepo, cfg.WebhookTestURL, logger),
		Tester:    publisher,
		Live:      live,
	}
}

// OptionsFromConfig maps the HTTP settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		WebOrigin:          cfg.WebOrigin,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		DevReceiverSecret:  cfg.DevReceiverSecret,
		SignatureTolerance: cfg.WebhookSignatureTolerance,
	}
}
