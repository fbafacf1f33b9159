package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"bikepulse/internal/dashboard"
	apierrors "bikepulse/internal/errors"
	bikemiddleware "bikepulse/internal/middleware"
	api "bikepulse/pkg/contracts/api/v1"
	"bikepulse/pkg/contracts/domain"
)

// DashboardHandler serves the dashboard views and their building blocks
type DashboardHandler struct {
	service      DashboardServiceInterface
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validate:     bikemiddleware.NewValidator(),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.Overview)
	r.Get("/exploration", h.Exploration)
	r.Get("/series", h.Series)
	r.Get("/correlation", h.Correlation)
	r.Get("/top", h.Top)
	r.Get("/elbow", h.Elbow)
	r.With(bikemiddleware.ContentTypeValidator(h.errorHandler, "application/json")).Post("/cluster", h.Cluster)

	return r
}

// Overview handles GET /api/dashboard/overview
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	var req api.SelectionRequest
	sel, err := bindSelection(h.validate, r.URL.Query(), &req, &req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Overview(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "overview built",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("rows", view.KPIs.Count))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// Exploration handles GET /api/dashboard/exploration
func (h *DashboardHandler) Exploration(w http.ResponseWriter, r *http.Request) {
	var req api.ExplorationRequest
	sel, err := bindSelection(h.validate, r.URL.Query(), &req, &req.SelectionRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	features, err := req.FeatureFields()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Exploration(r.Context(), sel, dashboard.ExplorationParams{
		K:        req.K,
		TopN:     req.Top,
		Seed:     req.Seed,
		Features: features,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "exploration built",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("rows", view.KPIs.Count),
		slog.Int("k", view.Cluster.K),
		slog.Bool("cluster_skipped", view.Cluster.Skipped))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// Series handles GET /api/dashboard/series
func (h *DashboardHandler) Series(w http.ResponseWriter, r *http.Request) {
	var req api.SelectionRequest
	sel, err := bindSelection(h.validate, r.URL.Query(), &req, &req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	series, err := h.service.Series(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   series,
		"count":  len(series),
	})
}

// Correlation handles GET /api/dashboard/correlation
func (h *DashboardHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	var req api.CorrelationRequest
	sel, err := bindSelection(h.validate, r.URL.Query(), &req, &req.SelectionRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	features, err := req.FeatureFields()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	matrix, err := h.service.Correlation(r.Context(), sel, features)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   matrix,
	})
}

// Top handles GET /api/dashboard/top
func (h *DashboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	var req api.TopRequest
	sel, err := bindSelection(h.validate, r.URL.Query(), &req, &req.SelectionRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	field := domain.FieldCount
	if req.Field != "" {
		if field, err = domain.ParseField(req.Field); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("field", err.Error()))
			return
		}
	}

	rows, err := h.service.Top(r.Context(), sel, field, req.N)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
		"field":  field,
	})
}

// Cluster handles POST /api/dashboard/cluster with a JSON ClusterRequest body
func (h *DashboardHandler) Cluster(w http.ResponseWriter, r *http.Request) {
	var req api.ClusterRequest
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest,
				"INVALID_REQUEST",
				"Invalid request body",
				map[string]interface{}{
					"error": err.Error(),
				},
			))
			return
		}
	}

	sel, err := validateSelection(h.validate, &req, &req.SelectionRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	features, err := req.FeatureFields()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "clustering selection",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("k", req.K),
		slog.Int("features", len(features)))

	result, err := h.service.Cluster(r.Context(), sel, req.K, req.Seed, features)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"chart":  dashboard.ClusterChart(result),
	})
}

// Elbow handles GET /api/dashboard/elbow
func (h *DashboardHandler) Elbow(w http.ResponseWriter, r *http.Request) {
	var req api.ElbowRequest
	sel, err := bindSelection(h.validate, r.URL.Query(), &req, &req.SelectionRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if req.KMin != 0 && req.KMax != 0 && req.KMax < req.KMin {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kmax", "kmax must not be less than kmin"))
		return
	}
	features, err := req.FeatureFields()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Elbow(r.Context(), sel, req.KMin, req.KMax, req.Seed, features)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"chart":  dashboard.ElbowChart(result),
	})
}
