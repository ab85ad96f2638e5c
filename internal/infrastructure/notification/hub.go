package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"go.uber.org/zap"
)

// Event names used by the hub itself
const (
	EventConnected = "connected"
	EventHeartbeat = "heartbeat"
)

const clientBufferSize = 64

var (
	// ErrTooManyClients is returned by Subscribe when the hub is full
	ErrTooManyClients = errors.New("maximum number of event stream clients reached")
	// ErrHubClosed is returned by Subscribe after Stop
	ErrHubClosed = errors.New("notification hub stopped")
)

// Message is one server-sent event
type Message struct {
	Event string
	Data  string
	ID    string
}

// Client is a connected event stream subscriber. Messages is closed when the
// client is unsubscribed or the hub stops.
type Client struct {
	ID       string
	messages chan Message
}

// Messages returns the client's receive channel
func (c *Client) Messages() <-chan Message {
	return c.messages
}

// Hub fans broadcast events out to every connected client. Delivery is
// best-effort: a client whose buffer is full misses the event.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	closed     bool
	maxClients int
	heartbeat  time.Duration
	seq        atomic.Uint64
	dropped    atomic.Uint64
	logger     *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithHeartbeat sets the heartbeat interval. Zero disables heartbeats.
func WithHeartbeat(interval time.Duration) HubOption {
	return func(h *Hub) {
		h.heartbeat = interval
	}
}

// WithMaxClients caps concurrent clients. Zero means unlimited.
func WithMaxClients(max int) HubOption {
	return func(h *Hub) {
		h.maxClients = max
	}
}

// WithLogger sets the hub logger
func WithLogger(logger *zap.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates a Hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:   make(map[string]*Client),
		heartbeat: 30 * time.Second,
		logger:    zap.NewNop(),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.Named("notification_hub")
	return h
}

// Start runs the heartbeat loop until Stop or ctx is done
func (h *Hub) Start(ctx context.Context) {
	if h.heartbeat <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stop:
				return
			case now := <-ticker.C:
				h.publish(Message{
					Event: EventHeartbeat,
					Data:  fmt.Sprintf(`{"timestamp":%d}`, now.Unix()),
				})
			}
		}
	}()
}

// Stop disconnects every client and rejects new ones
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)

		h.mu.Lock()
		defer h.mu.Unlock()
		h.closed = true
		for id, c := range h.clients {
			close(c.messages)
			delete(h.clients, id)
		}
		h.logger.Info("Notification hub stopped")
	})
}

// Subscribe registers a new client
func (h *Hub) Subscribe() (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		return nil, ErrTooManyClients
	}

	c := &Client{
		ID:       uuid.New().String(),
		messages: make(chan Message, clientBufferSize),
	}
	h.clients[c.ID] = c
	h.logger.Debug("Client connected", zap.String("client_id", c.ID), zap.Int("clients", len(h.clients)))
	return c, nil
}

// Unsubscribe removes the client and closes its channel. Safe to call more than once.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	// Sends happen under the read lock, so no broadcast can race this close
	close(c.messages)
	h.logger.Debug("Client disconnected", zap.String("client_id", c.ID), zap.Int("clients", len(h.clients)))
}

// Broadcast sends event with a JSON payload to every connected client.
// It never blocks on a slow client.
func (h *Hub) Broadcast(_ context.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	h.publish(Message{Event: event, Data: string(data)})
	return nil
}

// BroadcastRaw sends an already encoded JSON payload
func (h *Hub) BroadcastRaw(event string, data []byte) {
	h.publish(Message{Event: event, Data: string(data)})
}

func (h *Hub) publish(msg Message) {
	msg.ID = strconv.FormatUint(h.seq.Add(1), 10)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.messages <- msg:
		default:
			h.dropped.Add(1)
			h.logger.Warn("Client buffer full, dropping event",
				zap.String("client_id", c.ID),
				zap.String("event", msg.Event))
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many per-client deliveries were dropped
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

var _ fulfillment.Broadcaster = (*Hub)(nil)
