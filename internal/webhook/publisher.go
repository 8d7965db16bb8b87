package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

// EventCreator builds and persists events. *event.Factory implements it.
type EventCreator interface {
	Create(ctx context.Context, eventType string, data any) (*domain.Event, error)
}

// Publisher creates an event and dispatches it inline, in the caller's
// request.
type Publisher struct {
	events    EventCreator
	service   *Service
	endpoints EndpointStore
	logger    *slog.Logger
}

func NewPublisher(events EventCreator, service *Service, endpoints EndpointStore, logger *slog.Logger) *Publisher {
	return &Publisher{
		events:    events,
		service:   service,
		endpoints: endpoints,
		logger:    logger,
	}
}

// Publish persists a new event of eventType and fans it out to every active
// endpoint. If the event cannot be persisted nothing is delivered.
func (p *Publisher) Publish(ctx context.Context, eventType string, data any) (*FanoutResult, error) {
	evt, err := p.events.Create(ctx, eventType, data)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	result, err := p.service.Fanout(ctx, evt)
	if err != nil {
		return result, fmt.Errorf("fanout event %s: %w", evt.ID, err)
	}

	return result, nil
}

// TestDelivery is the outcome of SendTest.
type TestDelivery struct {
	EventID    string    `json:"eventId"`
	EndpointID uuid.UUID `json:"endpointId"`
	Delivered  Result    `json:"delivered"`
}

// SendTest delivers a webhook.test event to one endpoint: the one with
// endpointID when given, otherwise the most recently registered endpoint.
func (p *Publisher) SendTest(ctx context.Context, endpointID *uuid.UUID) (*TestDelivery, error) {
	endpoint, err := p.resolveEndpoint(ctx, endpointID)
	if err != nil {
		return nil, err
	}

	evt, err := p.events.Create(ctx, domain.EventWebhookTest, map[string]any{"hello": "World"})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	d, err := p.service.DeliverTo(ctx, evt, endpoint)
	if err != nil {
		return nil, err
	}

	p.logger.Info("test webhook sent",
		"event_id", evt.ID,
		"webhook_id", endpoint.ID,
		"ok", d.OK,
		"status", d.Status,
	)

	return &TestDelivery{
		EventID:    evt.ID,
		EndpointID: endpoint.ID,
		Delivered:  d.Result,
	}, nil
}

func (p *Publisher) resolveEndpoint(ctx context.Context, endpointID *uuid.UUID) (*domain.WebhookEndpoint, error) {
	if endpointID != nil {
		endpoint, err := p.endpoints.GetByID(ctx, *endpointID)
		if err != nil {
			return nil, fmt.Errorf("resolve endpoint: %w", err)
		}
		return endpoint, nil
	}

	endpoint, err := p.endpoints.GetLatest(ctx)
	if errors.Is(err, domain.ErrEndpointNotFound) {
		return nil, domain.ErrNoEndpoints
	}
	if err != nil {
		return nil, fmt.Errorf("resolve endpoint: %w", err)
	}

	return endpoint, nil
}
