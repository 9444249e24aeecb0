package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types published on the job feed
const (
	EventJobSubmitted = "job.submitted"
	EventJobApproved  = "job.approved"
	EventJobRejected  = "job.rejected"
	EventJobCompleted = "job.completed"
	EventJobDeleted   = "job.deleted"
)

// JobEvent is pushed to connected admins after a job changes state
type JobEvent struct {
	Type      string    `json:"type" example:"job.approved"`
	JobID     string    `json:"jobId"`
	StudentID string    `json:"studentId"`
	Status    string    `json:"status" example:"approved"`
	PrinterID string    `json:"printerId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher accepts job events without blocking
type Publisher interface {
	Publish(event JobEvent)
}

// Hub maintains the set of connected clients and fans events out to them.
// Only the Run goroutine touches the client set.
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan JobEvent
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// count mirrors len(clients) for readers outside Run
	mu    sync.RWMutex
	count int

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan JobEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "ws-hub").Logger(),
	}
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount()
			h.logger.Info().Str("adminID", client.subjectID).Str("addr", client.remoteAddr()).Msg("Client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.logger.Info().Str("adminID", client.subjectID).Msg("Client unregistered")
			}

		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

func (h *Hub) fanOut(event JobEvent) {
	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("jobID", event.JobID).Msg("Failed to marshal job event")
		return
	}

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop it rather than stall the feed
			h.logger.Warn().Str("adminID", client.subjectID).Msg("Dropping slow websocket client")
			h.remove(client)
		}
	}
}

// Publish queues an event for broadcast. Events are dropped when the hub is saturated.
func (h *Hub) Publish(event JobEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("type", event.Type).Str("jobID", event.JobID).Msg("Job event buffer full, dropping")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
