package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"bikepulse/internal/clustering"
	"bikepulse/internal/dataprocessing"
	"bikepulse/pkg/contracts/domain"
)

// Settings are the tunables of view assembly
type Settings struct {
	MovingAverageWindow int
	TopN                int
	DefaultK            int
	ElbowKMin           int
	ElbowKMax           int
	Seed                int64
	NInit               int
	MaxIter             int
}

// DefaultSettings mirrors the dashboard defaults.
func DefaultSettings() Settings {
	return Settings{
		MovingAverageWindow: dataprocessing.DefaultMovingAverageWindow,
		TopN:                dataprocessing.DefaultTopN,
		DefaultK:            3,
		ElbowKMin:           clustering.MinK,
		ElbowKMax:           clustering.MaxK,
		Seed:                clustering.DefaultSeed,
		NInit:               clustering.DefaultNInit,
		MaxIter:             clustering.DefaultMaxIter,
	}
}

// ExplorationParams are the per-request knobs of the exploration dashboard.
// Zero values fall back to Settings.
type ExplorationParams struct {
	K        int
	TopN     int
	Seed     *int64
	Features []domain.Field
}

// Builder assembles dashboard views from base rows and a selection
type Builder struct {
	settings Settings
}

// NewBuilder creates a builder; zero settings fall back to defaults.
func NewBuilder(settings Settings) *Builder {
	def := DefaultSettings()
	if settings.MovingAverageWindow <= 0 {
		settings.MovingAverageWindow = def.MovingAverageWindow
	}
	if settings.TopN <= 0 {
		settings.TopN = def.TopN
	}
	if settings.DefaultK == 0 {
		settings.DefaultK = def.DefaultK
	}
	if settings.ElbowKMin == 0 {
		settings.ElbowKMin = def.ElbowKMin
	}
	if settings.ElbowKMax == 0 {
		settings.ElbowKMax = def.ElbowKMax
	}
	if settings.NInit <= 0 {
		settings.NInit = def.NInit
	}
	if settings.MaxIter <= 0 {
		settings.MaxIter = def.MaxIter
	}
	return &Builder{settings: settings}
}

// Settings returns the effective settings.
func (b *Builder) Settings() Settings { return b.settings }

// ClusterOptions returns clustering options for the given seed and features.
func (b *Builder) ClusterOptions(seed *int64, features []domain.Field) clustering.Options {
	opts := clustering.Options{
		Features: features,
		Seed:     b.settings.Seed,
		NInit:    b.settings.NInit,
		MaxIter:  b.settings.MaxIter,
	}
	if seed != nil {
		opts.Seed = *seed
	}
	return opts
}

// Overview builds the overview dashboard for sel over rows.
func (b *Builder) Overview(rows []domain.DailyRecord, sel domain.FilterSelection) (domain.OverviewView, error) {
	selected := dataprocessing.Filter(rows, sel)

	seasonMeans, err := dataprocessing.AggregateByGroup(selected, domain.GroupBySeason, domain.FieldCount, domain.AggMean)
	if err != nil {
		return domain.OverviewView{}, err
	}
	dayTypeMeans, err := dataprocessing.AggregateByGroup(selected, domain.GroupByWorkingDay, domain.FieldCount, domain.AggMean)
	if err != nil {
		return domain.OverviewView{}, err
	}
	series := dataprocessing.DailyTimeSeries(selected, b.settings.MovingAverageWindow)

	return domain.OverviewView{
		Selection:    sel,
		KPIs:         dataprocessing.Summarize(selected),
		SeasonMeans:  seasonMeans,
		DayTypeMeans: dayTypeMeans,
		Series:       series,
		Insights: []domain.Insight{
			SeasonInsight(seasonMeans),
			WorkingDayInsight(dayTypeMeans),
		},
		Charts: []domain.ChartSpec{
			SeasonMeanChart(seasonMeans),
			WorkingDayMeanChart(dayTypeMeans),
			DailyTrendChart(series),
		},
	}, nil
}

// Exploration builds the exploration dashboard. Clustering and the elbow curve run
// concurrently with the cheaper aggregates.
func (b *Builder) Exploration(ctx context.Context, rows []domain.DailyRecord, sel domain.FilterSelection, params ExplorationParams) (domain.ExplorationView, error) {
	k := params.K
	if k == 0 {
		k = b.settings.DefaultK
	}
	if err := clustering.ValidateK(k); err != nil {
		return domain.ExplorationView{}, err
	}
	topN := params.TopN
	if topN <= 0 {
		topN = b.settings.TopN
	}
	opts := b.ClusterOptions(params.Seed, params.Features)

	selected := dataprocessing.Filter(rows, sel)
	view := domain.ExplorationView{
		Selection: sel,
		KPIs:      dataprocessing.Summarize(selected),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := clustering.Cluster(gctx, selected, k, opts)
		if err != nil {
			return fmt.Errorf("cluster: %w", err)
		}
		view.Cluster = res
		return nil
	})
	g.Go(func() error {
		res, err := clustering.Elbow(gctx, selected, b.settings.ElbowKMin, b.settings.ElbowKMax, opts)
		if err != nil {
			return fmt.Errorf("elbow: %w", err)
		}
		view.Elbow = res
		return nil
	})
	g.Go(func() error {
		months, err := dataprocessing.AggregateByGroup(selected, domain.GroupByMonth, domain.FieldCount, domain.AggMean)
		if err != nil {
			return err
		}
		view.MonthMeans = months
		view.Correlation = dataprocessing.CorrelationMatrix(selected, domain.DefaultFeatures)
		view.Top = dataprocessing.TopN(selected, domain.FieldCount, topN)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.ExplorationView{}, err
	}

	view.Insights = []domain.Insight{
		MonthInsight(view.MonthMeans),
		CorrelationInsight(view.Correlation),
		ClusterInsight(view.Cluster),
	}
	view.Charts = []domain.ChartSpec{
		MonthlyMeanChart(view.MonthMeans),
		TempVsCountChart(selected),
		CountBySeasonChart(selected),
		CountByDayTypeChart(selected),
		CountHistogramChart(selected),
		CorrelationChart(view.Correlation),
		TopDaysChart(view.Top, domain.FieldCount),
		ClusterChart(view.Cluster),
		ElbowChart(view.Elbow),
	}
	return view, nil
}
