package http

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"bikepulse/internal/dashboard"
	"bikepulse/internal/exporter"
	"bikepulse/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Ready() bool {
	return m.Called().Bool(0)
}

func (m *MockDashboardService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	args := m.Called()
	return args.Get(0).(domain.DatasetSummary), args.Error(1)
}

func (m *MockDashboardService) Reload(ctx context.Context) (domain.DatasetSummary, error) {
	args := m.Called()
	return args.Get(0).(domain.DatasetSummary), args.Error(1)
}

func (m *MockDashboardService) Overview(ctx context.Context, sel domain.FilterSelection) (domain.OverviewView, error) {
	args := m.Called(sel)
	return args.Get(0).(domain.OverviewView), args.Error(1)
}

func (m *MockDashboardService) Exploration(ctx context.Context, sel domain.FilterSelection, params dashboard.ExplorationParams) (domain.ExplorationView, error) {
	args := m.Called(sel, params)
	return args.Get(0).(domain.ExplorationView), args.Error(1)
}

func (m *MockDashboardService) Series(ctx context.Context, sel domain.FilterSelection) ([]domain.DailyPoint, error) {
	args := m.Called(sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyPoint), args.Error(1)
}

func (m *MockDashboardService) Correlation(ctx context.Context, sel domain.FilterSelection, features []domain.Field) (domain.CorrelationMatrix, error) {
	args := m.Called(sel, features)
	return args.Get(0).(domain.CorrelationMatrix), args.Error(1)
}

func (m *MockDashboardService) Top(ctx context.Context, sel domain.FilterSelection, field domain.Field, n int) ([]domain.DailyRecord, error) {
	args := m.Called(sel, field, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyRecord), args.Error(1)
}

func (m *MockDashboardService) Cluster(ctx context.Context, sel domain.FilterSelection, k int, seed *int64, features []domain.Field) (domain.ClusterResult, error) {
	args := m.Called(sel, k, seed, features)
	return args.Get(0).(domain.ClusterResult), args.Error(1)
}

func (m *MockDashboardService) Elbow(ctx context.Context, sel domain.FilterSelection, kMin, kMax int, seed *int64, features []domain.Field) (domain.ElbowResult, error) {
	args := m.Called(sel, kMin, kMax, seed, features)
	return args.Get(0).(domain.ElbowResult), args.Error(1)
}

func (m *MockDashboardService) Export(ctx context.Context, sel domain.FilterSelection, format exporter.Format, out io.Writer) (int64, error) {
	args := m.Called(sel, format)
	if s, ok := args.Get(0).(string); ok {
		n, _ := io.WriteString(out, s)
		return int64(n), args.Error(1)
	}
	return 0, args.Error(1)
}
