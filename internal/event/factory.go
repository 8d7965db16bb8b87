package event

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/metrics"
)

const idPrefix = "evt_"

// IDGenerator produces event identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator builds ids of the form evt_<32 hex> from a time-ordered
// UUIDv7, so ids sort by creation time.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return idPrefix + hex.EncodeToString(id[:])
}

// Store persists events. Create must complete before an event is delivered.
type Store interface {
	Create(ctx context.Context, event *domain.Event) error
}

type Factory struct {
	store Store
	ids   IDGenerator
	now   func() time.Time
}

type Option func(*Factory)

func WithIDGenerator(ids IDGenerator) Option {
	return func(f *Factory) {
		f.ids = ids
	}
}

func WithClock(now func() time.Time) Option {
	return func(f *Factory) {
		f.now = now
	}
}

func NewFactory(store Store, opts ...Option) *Factory {
	f := &Factory{
		store: store,
		ids:   UUIDGenerator{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds and persists a new event. The event is returned only once the
// write has succeeded.
func (f *Factory) Create(ctx context.Context, eventType string, data any) (*domain.Event, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return nil, domain.ErrInvalidEventType
	}

	evt := &domain.Event{
		ID:        f.ids.NewID(),
		Type:      eventType,
		CreatedAt: f.now().Unix(),
		Data:      data,
	}

	if err := f.store.Create(ctx, evt); err != nil {
		return nil, fmt.Errorf("persist event: %w", err)
	}

	metrics.ObserveEventCreated(evt.Type)

	return evt, nil
}
