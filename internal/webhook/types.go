package webhook

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	HeaderEvent     = "X-MPD-Event"
	HeaderID        = "X-MPD-Id"
	HeaderWebhookID = "X-MPD-Webhook-Id"
	HeaderRetry     = "X-MPD-Retry"
	HeaderSignature = "X-MPD-Signature"

	ContentType = "application/json; charset=utf-8"
)

// DeliveryMeta identifies one delivery of one event to one endpoint.
type DeliveryMeta struct {
	WebhookID uuid.UUID
	EventID   string
	Attempt   int
	RetryFlag int
}

// Headers assembles the outbound header set for a signed delivery.
func (m DeliveryMeta) Headers(eventType, signature string) http.Header {
	retry := "0"
	if m.RetryFlag != 0 {
		retry = "1"
	}

	h := http.Header{}
	h.Set("User-Agent", UserAgent)
	h.Set("Content-Type", ContentType)
	h.Set(HeaderEvent, eventType)
	h.Set(HeaderID, m.EventID)
	h.Set(HeaderWebhookID, m.WebhookID.String())
	h.Set(HeaderRetry, retry)
	h.Set(HeaderSignature, signature)
	return h
}

// Delivery is the per-endpoint entry of a FanoutResult.
type Delivery struct {
	EndpointID uuid.UUID `json:"endpointId"`
	Result
}

// FanoutResult aggregates every delivery made for one event. There is no
// overall success flag; callers inspect Deliveries.
type FanoutResult struct {
	EventID    string     `json:"eventId"`
	Deliveries []Delivery `json:"deliveries"`
}

// Succeeded counts deliveries classified OK.
func (r *FanoutResult) Succeeded() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.OK {
			n++
		}
	}
	return n
}
