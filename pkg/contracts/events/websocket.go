// Package events contains the event contract definitions for BikePulse
// websocket sessions.
package events

import (
	"time"

	api "bikepulse/pkg/contracts/api/v1"
	"bikepulse/pkg/contracts/domain"
)

// Protocol version
const (
	ProtocolVersion = "1.0"
	ProtocolName    = "bikepulse-dashboard"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server
	MessageTypeSelection MessageType = "selection"
	MessageTypeHeartbeat MessageType = "heartbeat"

	// Server to client
	MessageTypeConnection     MessageType = "connection"
	MessageTypeView           MessageType = "view"
	MessageTypeError          MessageType = "error"
	MessageTypeDatasetReload  MessageType = "dataset:reloaded"
	MessageTypeHeartbeatReply MessageType = "heartbeat:ack"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage is a server to client message
type WebSocketMessage struct {
	BaseMessage
	Dashboard domain.Dashboard `json:"dashboard,omitempty"`
	Data      interface{}      `json:"data,omitempty"`
}

// ClientMessage is a client to server message. Selection is only read for
// selection messages; an omitted dashboard means the overview.
type ClientMessage struct {
	Type      MessageType            `json:"type"`
	Dashboard domain.Dashboard       `json:"dashboard,omitempty"`
	Selection api.SelectionRequest   `json:"selection"`
	Options   *api.ClusteringRequest `json:"options,omitempty"`
}

// ConnectionInfo is the payload of the connection message
type ConnectionInfo struct {
	SessionID  string             `json:"session_id"`
	Protocol   string             `json:"protocol"`
	Version    string             `json:"version"`
	Ready      bool               `json:"ready"`
	Dashboards []domain.Dashboard `json:"dashboards"`
}

// ErrorData is the payload of an error message, shaped like an RFC 7807 problem
type ErrorData struct {
	Type   string      `json:"type"`
	Title  string      `json:"title"`
	Status int         `json:"status"`
	Detail string      `json:"detail,omitempty"`
	Errors interface{} `json:"errors,omitempty"`
}

// DatasetReloaded is the payload of a dataset:reloaded broadcast
type DatasetReloaded struct {
	Summary domain.DatasetSummary `json:"summary"`
}
