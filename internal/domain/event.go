package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the order flow and the webhook test endpoint.
const (
	EventOrderCreated   = "order.created"
	EventOrderConfirmed = "order.confirmed"
	EventOrderFailed    = "order.failed"
	EventWebhookTest    = "webhook.test"
)

// Event is an immutable fact delivered to every active webhook endpoint.
// The JSON encoding of this struct is the exact body receivers verify.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	CreatedAt int64  `json:"createdAt"`
	Data      any    `json:"data"`
}

// Time returns CreatedAt as a time.Time.
func (e *Event) Time() time.Time {
	return time.Unix(e.CreatedAt, 0).UTC()
}

type WebhookEndpoint struct {
	ID            uuid.UUID `json:"id"`
	URL           string    `json:"url"`
	SigningSecret string    `json:"signingSecret"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

type DeliveryStatus string

const (
	DeliveryStatusSuccess DeliveryStatus = "SUCCESS"
	DeliveryStatusFailed  DeliveryStatus = "FAILED"
)

// DeliveryAttempt records one try to deliver one event to one endpoint.
// Rows are insert-only; a retry would be a new row with a higher Attempt.
type DeliveryAttempt struct {
	ID                uuid.UUID      `json:"id"`
	Status            DeliveryStatus `json:"status"`
	Attempt           int            `json:"attempt"`
	ResponseCode      *int           `json:"responseCode"`
	ResponseMs        int64          `json:"responseMs"`
	ErrorMessage      *string        `json:"errorMessage"`
	WebhookEndpointID uuid.UUID      `json:"webhookEndpointId"`
	EventID           string         `json:"eventId"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// DeliveryWithRelations is a DeliveryAttempt joined with its event and
// endpoint, as returned by the deliveries listing.
type DeliveryWithRelations struct {
	DeliveryAttempt
	Event           *StoredEvent     `json:"event"`
	WebhookEndpoint *WebhookEndpoint `json:"webhookEndpoint"`
}

// StoredEvent is the persisted row of an Event; Payload holds the full
// serialized event.
type StoredEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}
