package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bikepulse/internal/clustering"
	"bikepulse/internal/config"
	"bikepulse/internal/dashboard"
	"bikepulse/internal/dataprocessing"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/exporter"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/validation"
	"bikepulse/pkg/contracts/domain"
)

// ReloadListener is notified after a successful dataset reload
type ReloadListener func(ctx context.Context, summary domain.DatasetSummary)

// DashboardOptions configures a DashboardService
type DashboardOptions struct {
	DatasetPath string
	ExportsDir  string
	CSVBOM      bool
	Settings    dashboard.Settings
	Tracer      trace.Tracer
	Metrics     *infrastructure.BusinessMetrics
	Logger      *slog.Logger
}

// DashboardOptionsFromConfig maps the application config to service options.
func DashboardOptionsFromConfig(cfg *config.Config) DashboardOptions {
	return DashboardOptions{
		DatasetPath: cfg.Dataset.File,
		ExportsDir:  cfg.Paths.ExportsDir,
		CSVBOM:      cfg.Export.CSVBOM,
		Settings: dashboard.Settings{
			MovingAverageWindow: cfg.Dashboard.MovingAverageWindow,
			TopN:                cfg.Dashboard.TopN,
			DefaultK:            cfg.Dashboard.DefaultK,
			ElbowKMin:           cfg.Dashboard.ElbowKMin,
			ElbowKMax:           cfg.Dashboard.ElbowKMax,
			Seed:                cfg.Dashboard.Seed,
			NInit:               cfg.Dashboard.NInit,
			MaxIter:             cfg.Dashboard.MaxIter,
		},
	}
}

// DashboardService owns the loaded dataset and computes every dashboard view from it.
// The dataset is immutable and swapped atomically on reload, so views never lock.
type DashboardService struct {
	dataset   atomic.Pointer[dataprocessing.Dataset]
	path      string
	builder   *dashboard.Builder
	exporter  *exporter.Exporter
	exportDir string
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger

	reloadMu  sync.Mutex
	mu        sync.RWMutex
	listeners []ReloadListener
}

// NewDashboardService creates a service. The dataset is not read until Load.
func NewDashboardService(opts DashboardOptions) *DashboardService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.TracerName)
	}
	exp := exporter.New(opts.CSVBOM, logger)
	logger = infrastructure.WithComponent(logger, "dashboard_service")

	logger.Info("DashboardService initialized",
		slog.String("dataset", opts.DatasetPath),
		slog.String("exports_dir", opts.ExportsDir))

	return &DashboardService{
		path:      opts.DatasetPath,
		builder:   dashboard.NewBuilder(opts.Settings),
		exporter:  exp,
		exportDir: opts.ExportsDir,
		tracer:    tracer,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Settings returns the effective dashboard settings.
func (s *DashboardService) Settings() dashboard.Settings {
	return s.builder.Settings()
}

// Load reads the dataset file. A failed load leaves any previous dataset in place.
func (s *DashboardService) Load(ctx context.Context) (domain.DatasetSummary, error) {
	ctx, span := s.tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset.source", s.path)))
	defer span.End()

	start := time.Now()
	ds, err := dataprocessing.Load(ctx, s.path)
	duration := time.Since(start)

	rows := 0
	if ds != nil {
		rows = ds.Len()
	}
	infrastructure.RecordDatasetLoad(ctx, s.metrics, s.path, rows, duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dataset load failed")
		logServiceError(ctx, s.logger, "load", err, slog.String("path", s.path))
		return domain.DatasetSummary{}, apierrors.NewDatasetError("load dataset", err).WithContext("path", s.path)
	}

	s.dataset.Store(ds)
	span.SetAttributes(attribute.Int("dataset.rows", rows))
	s.logger.InfoContext(ctx, "Dataset ready",
		slog.String("path", s.path),
		slog.Int("rows", rows),
		slog.Duration("duration", duration))
	return ds.Summary(), nil
}

// Reload re-reads the dataset file and notifies reload listeners on success.
// Concurrent reloads are rejected rather than queued.
func (s *DashboardService) Reload(ctx context.Context) (domain.DatasetSummary, error) {
	if !s.reloadMu.TryLock() {
		return domain.DatasetSummary{}, ErrReloadInProgress
	}
	defer s.reloadMu.Unlock()

	summary, err := s.Load(ctx)
	if err != nil {
		return summary, err
	}

	s.mu.RLock()
	listeners := make([]ReloadListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, summary)
	}
	return summary, nil
}

// OnReload registers fn to run after every successful Reload.
func (s *DashboardService) OnReload(fn ReloadListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Ready reports whether a dataset is loaded.
func (s *DashboardService) Ready() bool {
	return s.dataset.Load() != nil
}

// Summary describes the loaded dataset.
func (s *DashboardService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	ds := s.dataset.Load()
	if ds == nil {
		return domain.DatasetSummary{}, ErrDatasetNotLoaded
	}
	return ds.Summary(), nil
}

// rows returns a copy of the base rows.
func (s *DashboardService) rows(ctx context.Context) ([]domain.DailyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds := s.dataset.Load()
	if ds == nil {
		return nil, ErrDatasetNotLoaded
	}
	return ds.Records(), nil
}

// selected returns the base rows matching sel.
func (s *DashboardService) selected(ctx context.Context, sel domain.FilterSelection) ([]domain.DailyRecord, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.Filter(rows, sel), nil
}

// Overview builds the overview dashboard for sel.
func (s *DashboardService) Overview(ctx context.Context, sel domain.FilterSelection) (domain.OverviewView, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.overview")
	defer span.End()

	start := time.Now()
	rows, err := s.rows(ctx)
	if err != nil {
		return domain.OverviewView{}, s.fail(ctx, span, string(domain.DashboardOverview), err)
	}

	view, err := s.builder.Overview(rows, sel)
	infrastructure.RecordDashboardBuild(ctx, s.metrics, string(domain.DashboardOverview), view.KPIs.Count, time.Since(start), err)
	if err != nil {
		return domain.OverviewView{}, s.fail(ctx, span, string(domain.DashboardOverview), err)
	}
	span.SetAttributes(attribute.Int("selection.rows", view.KPIs.Count))
	return view, nil
}

// Exploration builds the exploration dashboard for sel.
func (s *DashboardService) Exploration(ctx context.Context, sel domain.FilterSelection, params dashboard.ExplorationParams) (domain.ExplorationView, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.exploration",
		trace.WithAttributes(attribute.Int("cluster.k", params.K)))
	defer span.End()

	start := time.Now()
	rows, err := s.rows(ctx)
	if err != nil {
		return domain.ExplorationView{}, s.fail(ctx, span, string(domain.DashboardExploration), err)
	}

	view, err := s.builder.Exploration(ctx, rows, sel, params)
	duration := time.Since(start)
	infrastructure.RecordDashboardBuild(ctx, s.metrics, string(domain.DashboardExploration), view.KPIs.Count, duration, err)
	if err != nil {
		return domain.ExplorationView{}, s.fail(ctx, span, string(domain.DashboardExploration), err)
	}
	infrastructure.RecordClusterRun(ctx, s.metrics, view.Cluster.K, view.Cluster.Skipped, duration)
	span.SetAttributes(attribute.Int("selection.rows", view.KPIs.Count))
	return view, nil
}

// Series returns the daily series with its moving average for sel.
func (s *DashboardService) Series(ctx context.Context, sel domain.FilterSelection) ([]domain.DailyPoint, error) {
	selected, err := s.selected(ctx, sel)
	if err != nil {
		return nil, err
	}
	return dataprocessing.DailyTimeSeries(selected, s.builder.Settings().MovingAverageWindow), nil
}

// Correlation returns the correlation matrix of features over sel.
// An empty feature list means the default weather features and count.
func (s *DashboardService) Correlation(ctx context.Context, sel domain.FilterSelection, features []domain.Field) (domain.CorrelationMatrix, error) {
	selected, err := s.selected(ctx, sel)
	if err != nil {
		return domain.CorrelationMatrix{}, err
	}
	if len(features) == 0 {
		features = domain.DefaultFeatures
	}
	return dataprocessing.CorrelationMatrix(selected, features), nil
}

// Top returns up to n rows of sel with the highest field value. n <= 0 uses the configured default.
func (s *DashboardService) Top(ctx context.Context, sel domain.FilterSelection, field domain.Field, n int) ([]domain.DailyRecord, error) {
	selected, err := s.selected(ctx, sel)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.builder.Settings().TopN
	}
	if field == "" {
		field = domain.FieldCount
	}
	return dataprocessing.TopN(selected, field, n), nil
}

// Cluster runs k-means over sel. k == 0 uses the configured default.
func (s *DashboardService) Cluster(ctx context.Context, sel domain.FilterSelection, k int, seed *int64, features []domain.Field) (domain.ClusterResult, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.cluster")
	defer span.End()

	if k == 0 {
		k = s.builder.Settings().DefaultK
	}
	selected, err := s.selected(ctx, sel)
	if err != nil {
		return domain.ClusterResult{}, s.fail(ctx, span, "cluster", err)
	}

	start := time.Now()
	res, err := clustering.Cluster(ctx, selected, k, s.builder.ClusterOptions(seed, features))
	if err != nil {
		return domain.ClusterResult{}, s.fail(ctx, span, "cluster", err)
	}
	infrastructure.RecordClusterRun(ctx, s.metrics, k, res.Skipped, time.Since(start))
	span.SetAttributes(
		attribute.Int("cluster.k", k),
		attribute.Bool("cluster.skipped", res.Skipped),
	)
	return res, nil
}

// Elbow computes the inertia curve over sel. Zero bounds use the configured range.
func (s *DashboardService) Elbow(ctx context.Context, sel domain.FilterSelection, kMin, kMax int, seed *int64, features []domain.Field) (domain.ElbowResult, error) {
	settings := s.builder.Settings()
	if kMin == 0 {
		kMin = settings.ElbowKMin
	}
	if kMax == 0 {
		kMax = settings.ElbowKMax
	}
	selected, err := s.selected(ctx, sel)
	if err != nil {
		return domain.ElbowResult{}, err
	}
	return clustering.Elbow(ctx, selected, kMin, kMax, s.builder.ClusterOptions(seed, features))
}

// Export writes the rows of sel to out in format and returns the number of bytes written.
func (s *DashboardService) Export(ctx context.Context, sel domain.FilterSelection, format exporter.Format, out io.Writer) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "export.write",
		trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	selected, err := s.selected(ctx, sel)
	if err != nil {
		return 0, s.fail(ctx, span, "export", err)
	}

	counter, written := exporter.CountingWriter(out)
	err = s.exporter.Write(ctx, format, counter, selected)
	infrastructure.RecordExport(ctx, s.metrics, string(format), written(), err)
	if err != nil {
		return written(), s.fail(ctx, span, "export",
			apierrors.NewExportError("write "+string(format), err).WithContext("rows", len(selected)))
	}

	span.SetAttributes(
		attribute.Int("export.rows", len(selected)),
		attribute.Int64("export.bytes", written()),
	)
	return written(), nil
}

// ExportFiles writes one file per format into dir, or the configured exports
// directory when dir is empty. Formats that succeeded are returned even when others fail.
func (s *DashboardService) ExportFiles(ctx context.Context, sel domain.FilterSelection, formats []exporter.Format, dir, baseName string) ([]exporter.Result, error) {
	ctx, span := s.tracer.Start(ctx, "export.write",
		trace.WithAttributes(attribute.Int("export.formats", len(formats))))
	defer span.End()

	if dir == "" {
		dir = s.exportDir
	}
	if baseName == "" {
		baseName = "bike_sharing_filtered"
	}
	if err := validation.ValidateExportName(baseName); err != nil {
		return nil, s.fail(ctx, span, "export", err)
	}
	selected, err := s.selected(ctx, sel)
	if err != nil {
		return nil, s.fail(ctx, span, "export", err)
	}

	results, err := s.exporter.WriteAll(ctx, dir, baseName, formats, selected)
	for _, r := range results {
		infrastructure.RecordExport(ctx, s.metrics, string(r.Format), r.Bytes, nil)
	}
	if err != nil {
		infrastructure.RecordExport(ctx, s.metrics, "batch", 0, err)
		return results, s.fail(ctx, span, "export", err)
	}
	return results, nil
}

// fail records err on span and logs it unless it is an expected caller error.
func (s *DashboardService) fail(ctx context.Context, span trace.Span, action string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if !isCallerError(err) {
		logServiceError(ctx, s.logger, action, err)
	}
	return err
}

func isCallerError(err error) bool {
	return errors.Is(err, ErrDatasetNotLoaded) ||
		errors.Is(err, domain.ErrInvalidSelection) ||
		errors.Is(err, clustering.ErrInvalidK) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
