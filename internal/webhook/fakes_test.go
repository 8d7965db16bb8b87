package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryEndpoints struct {
	mu    sync.Mutex
	items []domain.WebhookEndpoint
	err   error
}

func (m *memoryEndpoints) add(url, secret string, active bool) domain.WebhookEndpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	ep := domain.WebhookEndpoint{
		ID:            uuid.New(),
		URL:           url,
		SigningSecret: secret,
		IsActive:      active,
		CreatedAt:     time.Now().Add(time.Duration(len(m.items)) * time.Millisecond),
	}
	m.items = append(m.items, ep)
	return ep
}

func (m *memoryEndpoints) ListActive(ctx context.Context) ([]domain.WebhookEndpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	var out []domain.WebhookEndpoint
	for _, ep := range m.items {
		if ep.IsActive {
			out = append(out, ep)
		}
	}
	return out, nil
}

func (m *memoryEndpoints) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEndpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == id {
			ep := m.items[i]
			return &ep, nil
		}
	}
	return nil, domain.ErrEndpointNotFound
}

func (m *memoryEndpoints) GetLatest(ctx context.Context) (*domain.WebhookEndpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) == 0 {
		return nil, domain.ErrEndpointNotFound
	}
	ep := m.items[len(m.items)-1]
	return &ep, nil
}

type memoryDeliveries struct {
	mu   sync.Mutex
	rows []*domain.DeliveryAttempt
	err  error
}

// Create refuses cancelled contexts the way a pgx pool does.
func (m *memoryDeliveries) Create(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	attempt.CreatedAt = time.Now()
	m.rows = append(m.rows, attempt)
	return nil
}

func (m *memoryDeliveries) forEndpoint(id uuid.UUID) []*domain.DeliveryAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.DeliveryAttempt
	for _, r := range m.rows {
		if r.WebhookEndpointID == id {
			out = append(out, r)
		}
	}
	return out
}

func (m *memoryDeliveries) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memoryEvents struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (m *memoryEvents) Create(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *event)
	return nil
}

// receiver is an httptest server that records every request it gets.
type receiver struct {
	*httptest.Server

	mu       sync.Mutex
	requests []capturedRequest
}

type capturedRequest struct {
	Header http.Header
	Body   []byte
}

func newReceiver(status int) *receiver {
	r := &receiver{}
	r.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.requests = append(r.requests, capturedRequest{Header: req.Header.Clone(), Body: body})
		r.mu.Unlock()
		w.WriteHeader(status)
	}))
	return r
}

func (r *receiver) hits() []capturedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capturedRequest(nil), r.requests...)
}
