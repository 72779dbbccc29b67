package hub

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Hub maintains the active client set and broadcasts messages to it.
// Delivery is fire-and-forget: a client whose send buffer is full is dropped
// rather than retried, so one stalled browser cannot delay the rest.
type Hub struct {
	name   string
	logger zerolog.Logger

	clients    map[*Client]struct{}
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

// New creates a Hub. name tags log lines when a gateway runs several hubs.
func New(name string, logger zerolog.Logger) *Hub {
	return &Hub{
		name:       name,
		logger:     logger.With().Str("component", "hub").Str("hub", name).Logger(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// Run services the hub until Stop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info().Int("clients", count).Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info().Int("clients", count).Msg("client disconnected")

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Buffer full: the client is too slow, drop it.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn().Msg("dropped slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop shuts the hub down and disconnects all clients. Idempotent.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// add hands a new client to the run loop. After Stop the client's send
// channel is closed instead, so the write pump sees the disconnect.
func (h *Hub) add(c *Client) {
	select {
	case h.register <- c:
	case <-h.stop:
		close(c.send)
	}
}

// remove hands a disconnected client back to the run loop; a no-op after
// Stop, when the loop has already released everyone.
func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

// Broadcast queues a message for all connected clients. If the broadcast
// buffer is full the message is dropped; frames are ephemeral.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn().Msg("broadcast buffer full, dropping message")
	}
}

// BroadcastBinary broadcasts raw binary data (a JPEG frame).
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(Message{Kind: Binary, Data: data})
}

// BroadcastJSON encodes v and broadcasts it as a text message.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(Message{Kind: JSON, Data: data})
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
