package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/metrics"
)

// EndpointStore is the slice of the endpoint registry the delivery engine
// reads. It never writes endpoints.
type EndpointStore interface {
	ListActive(ctx context.Context) ([]domain.WebhookEndpoint, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEndpoint, error)
	GetLatest(ctx context.Context) (*domain.WebhookEndpoint, error)
}

// Sender performs one outbound delivery. *Client is the production Sender.
type Sender interface {
	Deliver(ctx context.Context, url string, headers http.Header, body []byte) Result
}

// Observer is told about every delivery attempt once it has been recorded.
// It is called from fan-out workers and must not block.
type Observer interface {
	DeliveryAttempted(event *domain.Event, endpointID uuid.UUID, res Result)
}

type Service struct {
	endpoints EndpointStore
	sender    Sender
	recorder  *Recorder
	logger    *slog.Logger
	workers   int
	sign      func(secret string, payload []byte) string
	observers []Observer
}

type Option func(*Service)

// WithWorkers sets how many endpoints are delivered concurrently per event.
// Values below 2 keep the default sequential fan-out.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// WithSigner replaces Sign, mainly so tests can pin the timestamp.
func WithSigner(sign func(secret string, payload []byte) string) Option {
	return func(s *Service) {
		s.sign = sign
	}
}

// WithObserver registers o for delivery notifications.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observers = append(s.observers, o)
	}
}

func NewService(endpoints EndpointStore, sender Sender, recorder *Recorder, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		endpoints: endpoints,
		sender:    sender,
		recorder:  recorder,
		logger:    logger,
		workers:   1,
		sign:      Sign,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fanout delivers event to every endpoint active at call time. Delivery
// failures are data in the result; only persistence errors are returned.
// When recording an attempt fails no further endpoints are started and the
// deliveries completed so far are returned together with the error.
// Cancelling ctx does not interrupt a fan-out: every started HTTP call is
// recorded, and each delivery is bounded by the sender's own timeout.
func (s *Service) Fanout(ctx context.Context, event *domain.Event) (*FanoutResult, error) {
	ctx = context.WithoutCancel(ctx)

	endpoints, err := s.endpoints.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active endpoints: %w", err)
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	result := &FanoutResult{
		EventID:    event.ID,
		Deliveries: make([]Delivery, 0, len(endpoints)),
	}

	if s.workers <= 1 || len(endpoints) <= 1 {
		for i := range endpoints {
			d, err := s.deliver(ctx, event, raw, &endpoints[i])
			result.Deliveries = append(result.Deliveries, d)
			if err != nil {
				return result, err
			}
		}
	} else {
		err = s.fanoutParallel(ctx, event, raw, endpoints, result)
	}

	s.logger.Info("webhook fan-out completed",
		"event_id", event.ID,
		"event_type", event.Type,
		"endpoints", len(endpoints),
		"succeeded", result.Succeeded(),
	)

	return result, err
}

func (s *Service) fanoutParallel(ctx context.Context, event *domain.Event, raw []byte, endpoints []domain.WebhookEndpoint, result *FanoutResult) error {
	slots := make([]*Delivery, len(endpoints))

	var (
		g       errgroup.Group
		aborted atomic.Bool
	)
	g.SetLimit(s.workers)

	for i := range endpoints {
		g.Go(func() error {
			if aborted.Load() {
				return nil
			}
			d, err := s.deliver(ctx, event, raw, &endpoints[i])
			slots[i] = &d
			if err != nil {
				aborted.Store(true)
				return err
			}
			return nil
		})
	}

	err := g.Wait()

	for _, d := range slots {
		if d != nil {
			result.Deliveries = append(result.Deliveries, *d)
		}
	}

	return err
}

// DeliverTo sends event to a single endpoint regardless of its active flag.
// Like Fanout it ignores cancellation of ctx.
func (s *Service) DeliverTo(ctx context.Context, event *domain.Event, endpoint *domain.WebhookEndpoint) (Delivery, error) {
	ctx = context.WithoutCancel(ctx)

	raw, err := json.Marshal(event)
	if err != nil {
		return Delivery{EndpointID: endpoint.ID}, fmt.Errorf("marshal event: %w", err)
	}
	return s.deliver(ctx, event, raw, endpoint)
}

func (s *Service) deliver(ctx context.Context, event *domain.Event, raw []byte, endpoint *domain.WebhookEndpoint) (Delivery, error) {
	meta := DeliveryMeta{
		WebhookID: endpoint.ID,
		EventID:   event.ID,
		Attempt:   0,
		RetryFlag: 0,
	}

	signature := s.sign(endpoint.SigningSecret, raw)
	res := s.sender.Deliver(ctx, endpoint.URL, meta.Headers(event.Type, signature), raw)

	metrics.ObserveDelivery(event.Type, res.OK, res.ElapsedMs)

	if res.OK {
		s.logger.Debug("webhook delivered",
			"event_id", event.ID,
			"webhook_id", endpoint.ID,
			"status", res.Status,
			"ms", res.ElapsedMs,
		)
	} else {
		s.logger.Warn("webhook delivery failed",
			"event_id", event.ID,
			"webhook_id", endpoint.ID,
			"status", res.Status,
			"ms", res.ElapsedMs,
			"error", res.Error,
		)
	}

	d := Delivery{EndpointID: endpoint.ID, Result: res}

	if _, err := s.recorder.Record(ctx, event, endpoint, res, meta.Attempt); err != nil {
		s.logger.Error("failed to record webhook delivery",
			"event_id", event.ID,
			"webhook_id", endpoint.ID,
			"error", err,
		)
		return d, fmt.Errorf("endpoint %s: %w", endpoint.ID, err)
	}

	for _, o := range s.observers {
		o.DeliveryAttempted(event, endpoint.ID, res)
	}

	return d, nil
}
