package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/webhook"
)

// Hub fans delivery notices out to connected dashboard sockets. Client
// membership is only mutated from the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu        sync.RWMutex
	connected int
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every remaining client. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.removeClient(client)
			}
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastAll(event)
		}
	}
}

// join registers client. It reports false when the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.clients[client] = true
	h.setConnected(len(h.clients))
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.setConnected(len(h.clients))
}

func (h *Hub) broadcastAll(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// slow consumer
			h.removeClient(client)
		}
	}
}

func (h *Hub) setConnected(n int) {
	h.mu.Lock()
	h.connected = n
	h.mu.Unlock()
}

// Broadcast queues an event for every client. It drops the event when the
// queue is full rather than stall the caller.
func (h *Hub) Broadcast(eventType EventType, data any) {
	event := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

// DeliveryAttempted implements webhook.Observer.
func (h *Hub) DeliveryAttempted(event *domain.Event, endpointID uuid.UUID, res webhook.Result) {
	h.Broadcast(EventDeliveryAttempted, DeliveryNotice{
		EventID:    event.ID,
		EventType:  event.Type,
		EndpointID: endpointID,
		OK:         res.OK,
		Status:     res.Status,
		ElapsedMs:  res.ElapsedMs,
		Error:      res.Error,
	})
}

func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.connected
}
