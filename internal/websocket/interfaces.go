package websocket

import (
	"context"
	"net"
	"time"

	"bikepulse/internal/dashboard"
	"bikepulse/pkg/contracts/domain"
)

// Connection defines the interface for WebSocket connections.
// *websocket.Conn satisfies it; tests substitute a mock.
type Connection interface {
	// WriteMessage writes a message with the given message type and payload
	WriteMessage(messageType int, data []byte) error

	// ReadMessage reads a message from the connection
	ReadMessage() (messageType int, p []byte, err error)

	// Close closes the connection
	Close() error

	// SetReadDeadline sets the read deadline on the connection
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline sets the write deadline on the connection
	SetWriteDeadline(t time.Time) error

	// SetReadLimit sets the maximum size for a message read from the connection
	SetReadLimit(limit int64)

	// SetPongHandler sets the handler for pong messages
	SetPongHandler(h func(string) error)

	// RemoteAddr returns the remote network address
	RemoteAddr() net.Addr
}

// ViewService builds the dashboard views a session asks for
type ViewService interface {
	Ready() bool
	Overview(ctx context.Context, sel domain.FilterSelection) (domain.OverviewView, error)
	Exploration(ctx context.Context, sel domain.FilterSelection, params dashboard.ExplorationParams) (domain.ExplorationView, error)
}

// MetricsCollector defines the interface for in-process hub statistics
type MetricsCollector interface {
	RecordConnection()
	RecordDisconnection(duration time.Duration)
	RecordMessage(direction, msgType string, size int64)
	RecordError(errorType string)
	RecordDroppedMessage()
	GetSnapshot() map[string]interface{}
	Reset()
}
