package webhook

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

// DeliveryStore persists delivery attempts. Implementations must assign ID
// and CreatedAt when they are zero.
type DeliveryStore interface {
	Create(ctx context.Context, attempt *domain.DeliveryAttempt) error
}

// Recorder writes one immutable attempt row per delivery.
type Recorder struct {
	store DeliveryStore
}

func NewRecorder(store DeliveryStore) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) Record(ctx context.Context, event *domain.Event, endpoint *domain.WebhookEndpoint, res Result, attempt int) (*domain.DeliveryAttempt, error) {
	row := &domain.DeliveryAttempt{
		Status:            domain.DeliveryStatusFailed,
		Attempt:           attempt,
		ResponseMs:        res.ElapsedMs,
		WebhookEndpointID: endpoint.ID,
		EventID:           event.ID,
	}

	if res.OK {
		row.Status = domain.DeliveryStatusSuccess
	}
	if res.Status != 0 {
		code := res.Status
		row.ResponseCode = &code
	}
	if res.Error != "" {
		msg := res.Error
		row.ErrorMessage = &msg
	}

	if err := r.store.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("record delivery attempt: %w", err)
	}

	return row, nil
}
