package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/icedfool/rpi-ds-game/internal/client"
	"github.com/icedfool/rpi-ds-game/pkg/models"
)

// Hub tracks live feed clients and pushes player events to the ones
// following that player
type Hub struct {
	// Registered clients
	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	// Inbound events from the session store
	broadcast chan models.PlayerEvent

	// Register requests from clients
	register chan *client.Client

	// Unregister requests from clients
	unregister chan *client.Client

	// Closed when Run returns
	done chan struct{}

	// Metrics
	totalConnections int64
	totalMessages    int64
	droppedMessages  int64
	metricsMu        sync.Mutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan models.PlayerEvent, 256),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	fmt.Println("✓ Hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Register adds a client to the hub. After shutdown the client is closed instead.
func (h *Hub) Register(c *client.Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues an event for delivery, dropping it if the queue is full
func (h *Hub) Broadcast(event models.PlayerEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.metricsMu.Lock()
		h.droppedMessages++
		h.metricsMu.Unlock()
		fmt.Println("⚠️  Broadcast buffer full, dropping message")
	}
}

// PlayerUpdated satisfies session.Observer
func (h *Hub) PlayerUpdated(ctx context.Context, event models.PlayerEvent) error {
	h.Broadcast(event)
	return nil
}

func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true

	h.metricsMu.Lock()
	h.totalConnections++
	h.metricsMu.Unlock()

	fmt.Printf("client %s following %s (total: %d)\n", c.ID, c.Player, len(h.clients))
}

func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.Close()
		fmt.Printf("client %s disconnected (total: %d)\n", c.ID, len(h.clients))
	}
}

// broadcastEvent sends an event to every client following its player
func (h *Hub) broadcastEvent(event models.PlayerEvent) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		if c.Follows(event.Player) {
			clients = append(clients, c)
		}
	}
	h.clientsMu.RUnlock()

	message := models.ServerMessage{
		Type:      models.MessageTypePlayerUpdate,
		Payload:   event,
		Timestamp: time.Now(),
	}

	sent := 0
	for _, c := range clients {
		if c.TrySend(message) {
			sent++
			continue
		}
		// Client buffer full - too slow, disconnect
		fmt.Printf("⚠️  client %s buffer full, disconnecting\n", c.ID)
		go h.Unregister(c)
	}

	h.metricsMu.Lock()
	h.totalMessages += int64(sent)
	h.droppedMessages += int64(len(clients) - sent)
	h.metricsMu.Unlock()
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	h.metricsMu.Lock()
	totalConnections := h.totalConnections
	totalMessages := h.totalMessages
	dropped := h.droppedMessages
	h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":     h.GetClientCount(),
		"total_connections":  totalConnections,
		"total_messages":     totalMessages,
		"dropped_messages":   dropped,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// shutdown closes all client connections
func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	fmt.Printf("🛑 Shutting down hub (%d active clients)\n", len(h.clients))

	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}
