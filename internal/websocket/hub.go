package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/middleware"
	"bikepulse/pkg/contracts/domain"
	"bikepulse/pkg/contracts/events"
)

// DefaultPath is the route sessions are served on; it is the instance of error payloads.
const DefaultPath = "/ws"

const metricsInterval = 30 * time.Second

// Hub maintains the set of active sessions and broadcasts messages to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	service      ViewService
	validate     *validator.Validate
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.BusinessMetrics
	stats        MetricsCollector
	logger       *slog.Logger

	// Control
	quit    chan struct{}
	running bool
}

// NewHub creates a hub whose sessions build views with service. metrics may be nil.
func NewHub(service ViewService, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = infrastructure.WithComponent(logger, "websocket.hub")
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}

	return &Hub{
		broadcast:    make(chan []byte, 16),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		clients:      make(map[*Client]bool),
		service:      service,
		validate:     middleware.NewValidator(),
		errorHandler: errorHandler,
		metrics:      metrics,
		stats:        NewMetrics(),
		logger:       logger,
		quit:         make(chan struct{}),
	}
}

// Start starts the hub's goroutines
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
	go h.reportMetrics()
}

// Run is the hub's main loop; Start calls it.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client, "closed")

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			failed := 0
			for _, client := range clients {
				if !client.enqueue(message) {
					failed++
					h.stats.RecordDroppedMessage()
					h.removeClient(client, "send buffer full")
				}
			}

			h.logger.Debug("broadcast delivered",
				slog.Int("client_count", len(clients)),
				slog.Int("failed", failed),
				slog.Int("message_size", len(message)))
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.stats.RecordConnection()
	infrastructure.RecordWSConnectionChange(ctx, h.metrics, 1)

	h.logger.InfoContext(ctx, "client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	ready := h.service != nil && h.service.Ready()
	client.sendMessage(ctx, events.MessageTypeConnection, "", events.ConnectionInfo{
		SessionID:  client.id,
		Protocol:   events.ProtocolName,
		Version:    events.ProtocolVersion,
		Ready:      ready,
		Dashboards: []domain.Dashboard{domain.DashboardOverview, domain.DashboardExploration},
	})
}

func (h *Hub) removeClient(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	count := len(h.clients)
	h.mu.Unlock()

	client.close()

	ctx := client.context()
	duration := time.Since(client.connectedAt)
	h.stats.RecordDisconnection(duration)
	infrastructure.RecordWSConnectionChange(ctx, h.metrics, -1)

	h.logger.InfoContext(ctx, "client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", duration))
}

// Register adds a client to the hub. A client registered after Stop is closed.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.close()
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Serve registers a client for conn and starts its pumps
func (h *Hub) Serve(conn Connection, traceID string) *Client {
	client := NewClient(h, conn, traceID, h.logger)
	h.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return client
}

// Broadcast sends a message of the given type to every client
func (h *Hub) Broadcast(ctx context.Context, msgType events.MessageType, data interface{}) {
	ctx = infrastructure.EnsureTraceID(ctx)
	msg := events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.New().String(),
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   infrastructure.GetTraceID(ctx),
		},
		Data: data,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "error marshaling broadcast",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msgType)))
		return
	}

	select {
	case h.broadcast <- payload:
		infrastructure.RecordWSMessage(ctx, h.metrics, DirectionOut, string(msgType))
	case <-h.quit:
	}
}

// DatasetReloaded tells every session that a new dataset is live. It matches
// the dashboard service's reload listener signature.
func (h *Hub) DatasetReloaded(ctx context.Context, summary domain.DatasetSummary) {
	h.logger.InfoContext(ctx, "broadcasting dataset reload",
		slog.Int("rows", summary.Rows),
		slog.Int("clients", h.ClientCount()))
	h.Broadcast(ctx, events.MessageTypeDatasetReload, events.DatasetReloaded{Summary: summary})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns a snapshot of the hub's session statistics
func (h *Hub) Stats() map[string]interface{} {
	return h.stats.GetSnapshot()
}

// Stop gracefully stops the hub and closes every client
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}

// reportMetrics periodically logs hub statistics
func (h *Hub) reportMetrics() {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.quit:
			return
		case <-ticker.C:
			h.logger.Info("websocket hub metrics",
				slog.Int("active_clients", h.ClientCount()),
				slog.Int("broadcast_queue", len(h.broadcast)),
				slog.Any("stats", h.stats.GetSnapshot()))
		}
	}
}
