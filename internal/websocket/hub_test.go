package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
	"bikepulse/pkg/contracts/events"
)

func newTestHub(t *testing.T, views *mockViews, metrics *infrastructure.BusinessMetrics) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(views, apierrors.NewErrorHandler(logger, false), metrics, logger)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func connect(t *testing.T, hub *Hub) (*MockConnection, *Client) {
	t.Helper()
	conn := NewMockConnection()
	client := hub.Serve(conn, "")
	msg := conn.Next(t)
	require.Equal(t, string(events.MessageTypeConnection), msg.Type)
	return conn, client
}

func TestHubStartStop(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(new(mockViews), nil, nil, logger)

	hub.Start()
	assert.True(t, hub.running)
	hub.Start()
	assert.True(t, hub.running)

	hub.Stop()
	assert.False(t, hub.running)
	hub.Stop()
	assert.False(t, hub.running)

	// registering after stop closes the client instead of blocking
	client := NewClient(hub, NewMockConnection(), "", logger)
	hub.Register(client)
	assert.False(t, client.enqueue([]byte("x")))
}

func TestHubConnectionMessage(t *testing.T) {
	views := new(mockViews)
	views.On("Ready").Return(true)
	hub := newTestHub(t, views, nil)

	conn := NewMockConnection()
	client := hub.Serve(conn, "trace-123")

	msg := conn.Next(t)
	assert.Equal(t, "connection", msg.Type)
	assert.Equal(t, "trace-123", msg.TraceID)

	var info events.ConnectionInfo
	require.NoError(t, json.Unmarshal(msg.Data, &info))
	assert.Equal(t, client.ID(), info.SessionID)
	assert.Equal(t, events.ProtocolName, info.Protocol)
	assert.True(t, info.Ready)
	assert.Equal(t, []domain.Dashboard{domain.DashboardOverview, domain.DashboardExploration}, info.Dashboards)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestHubDisconnect(t *testing.T) {
	views := new(mockViews)
	views.On("Ready").Return(false)
	hub := newTestHub(t, views, nil)

	conn, _ := connect(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	stats := hub.Stats()["connections"].(map[string]interface{})
	assert.Equal(t, int64(1), stats["total"])
	assert.Equal(t, int64(0), stats["active"])
}

func TestHubDatasetReloadedBroadcast(t *testing.T) {
	views := new(mockViews)
	views.On("Ready").Return(true)
	hub := newTestHub(t, views, nil)

	first, _ := connect(t, hub)
	second, _ := connect(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.DatasetReloaded(context.Background(), domain.DatasetSummary{Source: "day.csv", Rows: 731})

	for _, conn := range []*MockConnection{first, second} {
		msg := conn.Next(t)
		assert.Equal(t, "dataset:reloaded", msg.Type)

		var payload events.DatasetReloaded
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		assert.Equal(t, 731, payload.Summary.Rows)
	}
}

func TestHubStopClosesClients(t *testing.T) {
	views := new(mockViews)
	views.On("Ready").Return(true)
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(views, nil, nil, logger)
	hub.Start()

	conn, _ := connect(t, hub)
	hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())
	require.Eventually(t, conn.SentClose, time.Second, 10*time.Millisecond)
}

func TestHubSlowClientIsDropped(t *testing.T) {
	views := new(mockViews)
	views.On("Ready").Return(true)
	hub := newTestHub(t, views, nil)

	// a client without pumps never drains its buffer
	logger, _ := testutil.NewTestLogger(t)
	client := NewClient(hub, NewMockConnection(), "", logger)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	for i := 0; i < sendBufferSize+1; i++ {
		hub.Broadcast(context.Background(), events.MessageTypeDatasetReload, nil)
	}

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	messages := hub.Stats()["messages"].(map[string]interface{})
	assert.GreaterOrEqual(t, messages["dropped"], int64(1))
}

func TestHubRecordsBusinessMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	views := new(mockViews)
	views.On("Ready").Return(true)
	hub := newTestHub(t, views, metrics)

	conn, _ := connect(t, hub)
	conn.Push(t, `{"type":"heartbeat"}`)
	assert.Equal(t, "heartbeat:ack", conn.Next(t).Type)

	collect := func() map[string]int64 {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		sums := map[string]int64{}
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
					for _, dp := range sum.DataPoints {
						sums[m.Name] += dp.Value
					}
				}
			}
		}
		return sums
	}

	// connection and heartbeat:ack out, heartbeat in
	require.Eventually(t, func() bool {
		return collect()["websocket_messages_total"] == 3
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), collect()["websocket_connections"])
}

func TestHubOverRealWebSocket(t *testing.T) {
	views := new(mockViews)
	views.On("Ready").Return(true)
	views.On("Overview", domain.NewSelection().WithYear(2011)).
		Return(domain.OverviewView{KPIs: domain.KPIs{Count: 365, Total: 1243103}}, nil)
	hub := newTestHub(t, views, nil)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, "")
	}))
	defer server.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+DefaultPath, nil)
	require.NoError(t, err)
	defer ws.Close()

	var msg receivedMessage
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, "connection", msg.Type)

	require.NoError(t, ws.WriteJSON(map[string]interface{}{
		"type":      "selection",
		"dashboard": "overview",
		"selection": map[string]interface{}{"year": 2011},
	}))
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, "view", msg.Type)
	assert.Equal(t, "overview", msg.Dashboard)

	var view struct {
		KPIs domain.KPIs `json:"kpis"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &view))
	assert.Equal(t, 1243103, view.KPIs.Total)
	views.AssertCalled(t, "Overview", mock.Anything)
}
