package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/luct/reporting/internal/app/models"
)

// Hub maintains the set of active clients and fans report events out to the
// clients allowed to see them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Events waiting to be delivered
	events chan models.ReportEvent

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Mutex for event listeners
	listenersMu sync.RWMutex

	// Event listeners receive every event regardless of scope
	listeners []chan models.ReportEvent

	done chan struct{}

	// Logger for Hub operations
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		events:     make(chan models.ReportEvent, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles client registrations and event delivery until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.events:
			h.broadcastEvent(event)
		}
	}
}

// Publish queues an event for delivery. It never blocks: when the queue is full the event is dropped.
func (h *Hub) Publish(event models.ReportEvent) {
	select {
	case h.events <- event:
	case <-h.done:
	default:
		h.logger.Warn().Str("type", string(event.Type)).Int64("reportID", event.ReportID).Msg("Event queue full, dropping event")
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.logger.Info().
		Int64("userID", client.actor.ID).
		Str("role", string(client.actor.Role)).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.logger.Info().Int64("userID", client.actor.ID).Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// broadcastEvent delivers an event to every client whose scope allows its report
func (h *Hub) broadcastEvent(event models.ReportEvent) {
	h.notifyListeners(event)

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Int64("reportID", event.ReportID).Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for client := range h.clients {
		if !client.scope.Allows(event.Report) {
			continue
		}
		select {
		case client.send <- data:
			delivered++
		default:
			// Client's send buffer is full, drop the connection
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("type", string(event.Type)).
		Int64("reportID", event.ReportID).
		Int("delivered", delivered).
		Msg("Event broadcasted")
}

// notifyListeners sends an event to all registered listeners
func (h *Hub) notifyListeners(event models.ReportEvent) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.listeners {
		// Use non-blocking send to avoid blocking on slow listeners
		select {
		case listener <- event:
		default:
			h.logger.Warn().Msg("Skipped slow event listener")
		}
	}
}

// ClientsCount returns the number of connected clients
func (h *Hub) ClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// AddListener registers a channel to receive all events
func (h *Hub) AddListener(listener chan models.ReportEvent) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, listener)
}

// RemoveListener removes a listener from the hub
func (h *Hub) RemoveListener(listener chan models.ReportEvent) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.listeners {
		if l == listener {
			h.listeners[i] = h.listeners[len(h.listeners)-1]
			h.listeners = h.listeners[:len(h.listeners)-1]
			break
		}
	}
}
