package websocket

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bikepulse/internal/dashboard"
	apierrors "bikepulse/internal/errors"
	"bikepulse/pkg/contracts/domain"
	"bikepulse/pkg/contracts/events"
)

func decodeError(t *testing.T, msg receivedMessage) events.ErrorData {
	t.Helper()
	require.Equal(t, "error", msg.Type)
	var data events.ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func TestSessionOverviewSelections(t *testing.T) {
	tests := []struct {
		name      string
		selection map[string]interface{}
		want      domain.FilterSelection
	}{
		{name: "no constraints", selection: map[string]interface{}{}, want: domain.NewSelection()},
		{
			name:      "seasons and working days",
			selection: map[string]interface{}{"season": []string{"Spring", "Summer"}, "workingday": []string{"Working Day"}},
			want: domain.NewSelection().
				WithSeasons(domain.SeasonSpring, domain.SeasonSummer).
				WithDayTypes(domain.DayTypeWorkingDay),
		},
		{
			name:      "empty season list selects nothing",
			selection: map[string]interface{}{"season": []string{}},
			want:      domain.NewSelection().WithSeasons(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := new(mockViews)
			views.On("Ready").Return(true)
			views.On("Overview", tt.want).Return(domain.OverviewView{KPIs: domain.KPIs{Count: 4}}, nil)
			hub := newTestHub(t, views, nil)
			conn, _ := connect(t, hub)

			conn.Push(t, map[string]interface{}{"type": "selection", "selection": tt.selection})

			msg := conn.Next(t)
			assert.Equal(t, "view", msg.Type)
			assert.Equal(t, "overview", msg.Dashboard)
			views.AssertExpectations(t)
		})
	}
}

func TestSessionExploration(t *testing.T) {
	seed := int64(11)
	views := new(mockViews)
	views.On("Ready").Return(true)
	views.On("Exploration", domain.NewSelection().WithYear(2012), dashboard.ExplorationParams{
		K:        4,
		Seed:     &seed,
		Features: []domain.Field{domain.FieldTemperature, domain.FieldHumidity},
	}).Return(domain.ExplorationView{Cluster: domain.ClusterResult{K: 4, Seed: seed}}, nil)
	hub := newTestHub(t, views, nil)
	conn, _ := connect(t, hub)

	conn.Push(t, `{"type":"selection","dashboard":"exploration","selection":{"year":2012},"options":{"k":4,"seed":11,"features":["temp","hum"]}}`)

	msg := conn.Next(t)
	require.Equal(t, "view", msg.Type)
	assert.Equal(t, "exploration", msg.Dashboard)

	var view struct {
		Cluster domain.ClusterResult `json:"cluster"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &view))
	assert.Equal(t, 4, view.Cluster.K)
	assert.Equal(t, seed, view.Cluster.Seed)
	views.AssertExpectations(t)
}

func TestSessionErrors(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		serviceErr error
		wantStatus int
		wantType   string
	}{
		{name: "invalid json", message: `{"type":`, wantStatus: 400, wantType: apierrors.TypeValidation},
		{name: "unknown message type", message: `{"type":"subscribe"}`, wantStatus: 400, wantType: apierrors.TypeValidation},
		{name: "unknown season", message: `{"type":"selection","selection":{"season":["Monsoon"]}}`, wantStatus: 400, wantType: apierrors.TypeValidation},
		{name: "reversed date range", message: `{"type":"selection","selection":{"start":"2012-02-01","end":"2012-01-01"}}`, wantStatus: 400, wantType: apierrors.TypeValidation},
		{name: "k out of range", message: `{"type":"selection","dashboard":"exploration","options":{"k":9}}`, wantStatus: 400, wantType: apierrors.TypeValidation},
		{name: "unknown dashboard", message: `{"type":"selection","dashboard":"maps"}`, wantStatus: 400, wantType: apierrors.TypeValidation},
		{name: "dataset not loaded", message: `{"type":"selection"}`, serviceErr: domain.ErrDatasetNotLoaded, wantStatus: 503, wantType: apierrors.TypeDatasetNotLoaded},
		{name: "unexpected failure", message: `{"type":"selection"}`, serviceErr: errors.New("boom"), wantStatus: 500, wantType: apierrors.TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := new(mockViews)
			views.On("Ready").Return(true)
			views.On("Overview", mock.Anything).Return(domain.OverviewView{}, tt.serviceErr)
			hub := newTestHub(t, views, nil)
			conn, _ := connect(t, hub)

			conn.Push(t, tt.message)

			data := decodeError(t, conn.Next(t))
			assert.Equal(t, tt.wantStatus, data.Status)
			assert.Equal(t, tt.wantType, data.Type)
			assert.NotEmpty(t, data.Title)

			// the session survives a failed request
			conn.Push(t, `{"type":"heartbeat"}`)
			assert.Equal(t, "heartbeat:ack", conn.Next(t).Type)
		})
	}
}

func TestSessionValidationErrorsListFields(t *testing.T) {
	views := new(mockViews)
	views.On("Ready").Return(true)
	hub := newTestHub(t, views, nil)
	conn, _ := connect(t, hub)

	conn.Push(t, `{"type":"selection","selection":{"season":["Monsoon"],"start":"01/02/2011"}}`)

	data := decodeError(t, conn.Next(t))
	details, err := json.Marshal(data.Errors)
	require.NoError(t, err)
	assert.Contains(t, string(details), `"season[0]"`)
	assert.Contains(t, string(details), `"start"`)
	views.AssertNotCalled(t, "Overview", mock.Anything)
}

func TestSessionRepliesInOrder(t *testing.T) {
	views := new(mockViews)
	views.On("Ready").Return(true)
	views.On("Overview", domain.NewSelection().WithYear(2011)).Return(domain.OverviewView{KPIs: domain.KPIs{Count: 365}}, nil)
	views.On("Overview", domain.NewSelection().WithYear(2012)).Return(domain.OverviewView{KPIs: domain.KPIs{Count: 366}}, nil)
	hub := newTestHub(t, views, nil)
	conn, _ := connect(t, hub)

	conn.Push(t, `{"type":"selection","selection":{"year":2011}}`)
	conn.Push(t, `{"type":"selection","selection":{"year":2012}}`)

	for _, want := range []int{365, 366} {
		msg := conn.Next(t)
		require.Equal(t, "view", msg.Type)
		var view struct {
			KPIs domain.KPIs `json:"kpis"`
		}
		require.NoError(t, json.Unmarshal(msg.Data, &view))
		assert.Equal(t, want, view.KPIs.Count)
	}
}
