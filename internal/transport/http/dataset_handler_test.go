package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"bikepulse/internal/dataprocessing"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/services"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
)

func newDatasetRouter(t *testing.T, svc *MockDashboardService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewDatasetHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/dataset", h.Routes())
	return r
}

func TestDatasetHandler_Summary(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Summary").Return(domain.DatasetSummary{Source: "data/day.csv", Rows: 731}, nil)

	w, body := doRequest(t, newDatasetRouter(t, svc), http.MethodGet, "/api/dataset", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(731), data["rows"])
}

func TestDatasetHandler_SummaryNotLoaded(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Summary").Return(domain.DatasetSummary{}, services.ErrDatasetNotLoaded)

	w, body := doRequest(t, newDatasetRouter(t, svc), http.MethodGet, "/api/dataset", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apierrors.TypeDatasetNotLoaded, body["type"])
}

func TestDatasetHandler_Reload(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "another reload running", err: services.ErrReloadInProgress, wantStatus: http.StatusConflict, wantType: apierrors.TypeReloadConflict},
		{
			name:       "invalid file keeps previous dataset",
			err:        fmt.Errorf("load dataset: %w", dataprocessing.ErrMissingColumn),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeDataCorrupted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("Reload").Return(domain.DatasetSummary{Rows: 10}, tt.err)

			w, body := doRequest(t, newDatasetRouter(t, svc), http.MethodPost, "/api/dataset/reload", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.err == nil {
				assert.Equal(t, "success", body["status"])
				assert.Equal(t, "Dataset reloaded", body["message"])
				return
			}
			assert.Equal(t, tt.wantType, body["type"])
		})
	}
}
