package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventDeliveryAttempted EventType = "delivery.attempted"
)

type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// DeliveryNotice is the payload of a delivery.attempted frame.
type DeliveryNotice struct {
	EventID    string    `json:"eventId"`
	EventType  string    `json:"eventType"`
	EndpointID uuid.UUID `json:"endpointId"`
	OK         bool      `json:"ok"`
	Status     int       `json:"status"`
	ElapsedMs  int64     `json:"ms"`
	Error      string    `json:"error,omitempty"`
}
