package http

import (
	"context"
	"io"

	"bikepulse/internal/dashboard"
	"bikepulse/internal/exporter"
	"bikepulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers need
type DashboardServiceInterface interface {
	Ready() bool
	Summary(ctx context.Context) (domain.DatasetSummary, error)
	Reload(ctx context.Context) (domain.DatasetSummary, error)

	Overview(ctx context.Context, sel domain.FilterSelection) (domain.OverviewView, error)
	Exploration(ctx context.Context, sel domain.FilterSelection, params dashboard.ExplorationParams) (domain.ExplorationView, error)
	Series(ctx context.Context, sel domain.FilterSelection) ([]domain.DailyPoint, error)
	Correlation(ctx context.Context, sel domain.FilterSelection, features []domain.Field) (domain.CorrelationMatrix, error)
	Top(ctx context.Context, sel domain.FilterSelection, field domain.Field, n int) ([]domain.DailyRecord, error)
	Cluster(ctx context.Context, sel domain.FilterSelection, k int, seed *int64, features []domain.Field) (domain.ClusterResult, error)
	Elbow(ctx context.Context, sel domain.FilterSelection, kMin, kMax int, seed *int64, features []domain.Field) (domain.ElbowResult, error)

	Export(ctx context.Context, sel domain.FilterSelection, format exporter.Format, out io.Writer) (int64, error)
}
