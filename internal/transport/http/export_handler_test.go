package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/exporter"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
)

func newExportRouter(t *testing.T, svc *MockDashboardService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewExportHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/export", h.Routes())
	return r
}

func TestExportHandler_Download(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		format       exporter.Format
		wantType     string
		wantFilename string
	}{
		{name: "csv", path: "csv", format: exporter.FormatCSV, wantType: "text/csv; charset=utf-8", wantFilename: "bike_sharing_filtered.csv"},
		{name: "excel alias", path: "excel", format: exporter.FormatXLSX, wantType: exporter.FormatXLSX.ContentType(), wantFilename: "bike_sharing_filtered.xlsx"},
		{name: "parquet", path: "PARQUET", format: exporter.FormatParquet, wantType: exporter.FormatParquet.ContentType(), wantFilename: "bike_sharing_filtered.parquet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("Export", domain.NewSelection().WithSeasons(domain.SeasonWinter), tt.format).Return("payload", nil)

			req := httptest.NewRequest(http.MethodGet, "/api/export/"+tt.path+"?season=Winter", nil)
			w := httptest.NewRecorder()
			newExportRouter(t, svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantType, w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.wantFilename+`"`, w.Header().Get("Content-Disposition"))
			assert.Equal(t, "7", w.Header().Get("Content-Length"))
			assert.Equal(t, "payload", w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestExportHandler_UnsupportedFormat(t *testing.T) {
	svc := new(MockDashboardService)

	w, body := doRequest(t, newExportRouter(t, svc), http.MethodGet, "/api/export/pdf", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.TypeUnsupportedFormat, body["type"])
	assert.ElementsMatch(t, []interface{}{"csv", "xlsx", "parquet"}, body["supported"])
	svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
}

func TestExportHandler_Failures(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
	}{
		{name: "bad selection", query: "?workingday=Sometimes", wantStatus: http.StatusBadRequest},
		{name: "dataset not loaded", err: domain.ErrDatasetNotLoaded, wantStatus: http.StatusServiceUnavailable},
		{name: "writer failure", err: errors.New("disk full"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("Export", mock.Anything, exporter.FormatCSV).Return(nil, tt.err)

			w, body := doRequest(t, newExportRouter(t, svc), http.MethodGet, "/api/export/csv"+tt.query, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, w.Header().Get("Content-Disposition"))
			assert.NotEmpty(t, body["type"])
		})
	}
}
