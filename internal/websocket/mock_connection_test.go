package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bikepulse/internal/dashboard"
	"bikepulse/pkg/contracts/domain"
)

// MockConnection is an in-memory Connection. Reads block until a message is
// pushed or the connection is closed.
type MockConnection struct {
	mu       sync.Mutex
	reads    chan []byte
	writes   chan []byte
	done     chan struct{}
	closed   bool
	closeMsg bool

	ReadLimit int64
}

func NewMockConnection() *MockConnection {
	return &MockConnection{
		reads:  make(chan []byte, 16),
		writes: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("connection closed")
	}
	switch messageType {
	case websocket.TextMessage:
		m.writes <- data
	case websocket.CloseMessage:
		m.closeMsg = true
	}
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.reads:
		return websocket.TextMessage, msg, nil
	case <-m.done:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseGoingAway}
	}
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *MockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *MockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *MockConnection) SetPongHandler(func(string) error) {}

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

func (m *MockConnection) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

// Push queues a client message
func (m *MockConnection) Push(t *testing.T, v interface{}) {
	t.Helper()
	var data []byte
	switch msg := v.(type) {
	case string:
		data = []byte(msg)
	default:
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	m.reads <- data
}

// receivedMessage is the decoded form of a server message
type receivedMessage struct {
	Type      string          `json:"type"`
	Dashboard string          `json:"dashboard"`
	TraceID   string          `json:"trace_id"`
	Data      json.RawMessage `json:"data"`
}

// Next waits for the next text message written to the connection
func (m *MockConnection) Next(t *testing.T) receivedMessage {
	t.Helper()
	select {
	case data := <-m.writes:
		var msg receivedMessage
		require.NoError(t, json.Unmarshal(data, &msg), string(data))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for websocket message")
	}
	return receivedMessage{}
}

func (m *MockConnection) SentClose() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeMsg
}

// mockViews is a testify mock of ViewService
type mockViews struct {
	mock.Mock
}

func (m *mockViews) Ready() bool {
	return m.Called().Bool(0)
}

func (m *mockViews) Overview(ctx context.Context, sel domain.FilterSelection) (domain.OverviewView, error) {
	args := m.Called(sel)
	return args.Get(0).(domain.OverviewView), args.Error(1)
}

func (m *mockViews) Exploration(ctx context.Context, sel domain.FilterSelection, params dashboard.ExplorationParams) (domain.ExplorationView, error) {
	args := m.Called(sel, params)
	return args.Get(0).(domain.ExplorationView), args.Error(1)
}
