package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/exporter"
	bikemiddleware "bikepulse/internal/middleware"
	api "bikepulse/pkg/contracts/api/v1"
)

// ExportBaseName is the file name offered for downloads, without extension
const ExportBaseName = "bike_sharing_filtered"

// ExportHandler serves filtered rows as file downloads
type ExportHandler struct {
	service      DashboardServiceInterface
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validate:     bikemiddleware.NewValidator(),
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{format}", h.Download)
	return r
}

// Download handles GET /api/export/{format}. The file is built in memory so a
// failed export still produces a problem response instead of a truncated download.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var req api.SelectionRequest
	sel, err := bindSelection(h.validate, r.URL.Query(), &req, &req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	n, err := h.service.Export(r.Context(), sel, format, &buf)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := ExportBaseName + format.Extension()
	h.logger.InfoContext(r.Context(), "export served",
		slog.String("format", string(format)),
		slog.String("filename", filename),
		slog.Int64("bytes", n),
		slog.String("request_id", reqID),
	)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
