package dashboard

import (
	"fmt"

	"bikepulse/internal/dataprocessing"
	"bikepulse/pkg/contracts/domain"
)

// Chart identifiers
const (
	ChartSeasonMean     = "season_mean"
	ChartWorkingDayMean = "workingday_mean"
	ChartDailyTrend     = "daily_trend"
	ChartMonthlyMean    = "monthly_mean"
	ChartTempVsCount    = "temp_vs_count"
	ChartCountBySeason  = "count_by_season"
	ChartCountByDayType = "count_by_daytype"
	ChartCountHistogram = "count_histogram"
	ChartCorrelation    = "correlation"
	ChartTopDays        = "top_days"
	ChartClusters       = "clusters"
	ChartElbow          = "elbow"

	SeriesDaily         = "daily"
	SeriesMovingAverage = "moving_average_7"
)

// groupBarChart renders a group result as a bar chart, highest group first.
func groupBarChart(id, title, xField string, res domain.GroupResult, sortDesc bool) domain.ChartSpec {
	if sortDesc {
		res = res.SortedDesc()
	}
	points := make([]domain.ChartPoint, 0, res.Len())
	for _, s := range res.Stats {
		points = append(points, domain.ChartPoint{X: s.Label, Y: domain.Float(s.Value), Label: s.Group})
	}
	return domain.ChartSpec{
		ID:     id,
		Type:   domain.ChartTypeBar,
		Title:  title,
		XField: xField,
		YField: string(res.Field),
		Series: []domain.ChartSeries{{Name: fmt.Sprintf("%s %s", res.Func, res.Field), Points: points}},
	}
}

// SeasonMeanChart is the average rentals by season bar chart.
func SeasonMeanChart(res domain.GroupResult) domain.ChartSpec {
	return groupBarChart(ChartSeasonMean, "Average Rentals by Season", "season", res, true)
}

// WorkingDayMeanChart is the average rentals by day type bar chart.
func WorkingDayMeanChart(res domain.GroupResult) domain.ChartSpec {
	return groupBarChart(ChartWorkingDayMean, "Average Rentals: Working Day vs Weekend/Holiday", "working_day", res, true)
}

// MonthlyMeanChart keeps months in the order they appear in the selection.
func MonthlyMeanChart(res domain.GroupResult) domain.ChartSpec {
	return groupBarChart(ChartMonthlyMean, "Average Rentals by Month", "month", res, false)
}

// DailyTrendChart plots daily totals with their trailing moving average.
func DailyTrendChart(series []domain.DailyPoint) domain.ChartSpec {
	daily := make([]domain.ChartPoint, len(series))
	avg := make([]domain.ChartPoint, len(series))
	for i, p := range series {
		x := p.Date.Format(domain.DateLayout)
		daily[i] = domain.ChartPoint{X: x, Y: domain.Float(float64(p.Count))}
		avg[i] = domain.ChartPoint{X: x, Y: p.MovingAverage}
	}
	return domain.ChartSpec{
		ID:     ChartDailyTrend,
		Type:   domain.ChartTypeLine,
		Title:  "Daily Rentals Trend",
		XField: "date",
		YField: string(domain.FieldCount),
		Series: []domain.ChartSeries{
			{Name: SeriesDaily, Points: daily},
			{Name: SeriesMovingAverage, Points: avg},
		},
	}
}

// TempVsCountChart scatters temperature against rentals with one series per season.
func TempVsCountChart(rows []domain.DailyRecord) domain.ChartSpec {
	bySeason := map[domain.Season][]domain.ChartPoint{}
	for _, r := range rows {
		bySeason[r.Season] = append(bySeason[r.Season], domain.ChartPoint{
			X:     r.Temperature,
			Y:     domain.Float(float64(r.Count)),
			Label: r.Date.Format(domain.DateLayout),
		})
	}
	series := []domain.ChartSeries{}
	for _, s := range domain.AllSeasons {
		if points, ok := bySeason[s]; ok {
			series = append(series, domain.ChartSeries{Name: s.Label(), Points: points})
		}
	}
	return domain.ChartSpec{
		ID:     ChartTempVsCount,
		Type:   domain.ChartTypeScatter,
		Title:  "Temperature vs Rentals",
		XField: string(domain.FieldTemperature),
		YField: string(domain.FieldCount),
		Series: series,
	}
}

// CountBySeasonChart is a box plot of daily rentals per season.
func CountBySeasonChart(rows []domain.DailyRecord) domain.ChartSpec {
	values := map[domain.Season][]float64{}
	for _, r := range rows {
		values[r.Season] = append(values[r.Season], float64(r.Count))
	}
	series := []domain.ChartSeries{}
	for _, s := range domain.AllSeasons {
		if v, ok := values[s]; ok {
			series = append(series, domain.ChartSeries{Name: s.Label(), Points: []domain.ChartPoint{}, Box: boxStats(v)})
		}
	}
	return domain.ChartSpec{
		ID:     ChartCountBySeason,
		Type:   domain.ChartTypeBox,
		Title:  "Rentals Distribution by Season",
		XField: "season",
		YField: string(domain.FieldCount),
		Series: series,
	}
}

// CountByDayTypeChart is a violin plot of daily rentals per day type.
func CountByDayTypeChart(rows []domain.DailyRecord) domain.ChartSpec {
	values := map[domain.DayType][]float64{}
	for _, r := range rows {
		values[r.WorkingDay] = append(values[r.WorkingDay], float64(r.Count))
	}
	series := []domain.ChartSeries{}
	bandwidths := map[string]float64{}
	for _, dt := range domain.AllDayTypes {
		v, ok := values[dt]
		if !ok {
			continue
		}
		points, h := density(v)
		bandwidths[dt.Label()] = h
		series = append(series, domain.ChartSeries{Name: dt.Label(), Points: points, Box: boxStats(v)})
	}
	return domain.ChartSpec{
		ID:     ChartCountByDayType,
		Type:   domain.ChartTypeViolin,
		Title:  "Rentals Distribution: Working Day vs Weekend/Holiday",
		XField: string(domain.FieldCount),
		YField: "density",
		Series: series,
		Meta:   map[string]interface{}{"bandwidth": bandwidths},
	}
}

// CountHistogramChart bins daily rentals using Sturges' rule.
func CountHistogramChart(rows []domain.DailyRecord) domain.ChartSpec {
	v := dataprocessing.Column(rows, domain.FieldCount)
	return domain.ChartSpec{
		ID:     ChartCountHistogram,
		Type:   domain.ChartTypeHistogram,
		Title:  "Distribution of Daily Rentals",
		XField: string(domain.FieldCount),
		YField: "days",
		Series: []domain.ChartSeries{{Name: "days", Points: histogram(v)}},
		Meta:   map[string]interface{}{"bins": sturgesBins(len(v))},
	}
}

// CorrelationChart is a heatmap of the correlation matrix.
func CorrelationChart(m domain.CorrelationMatrix) domain.ChartSpec {
	return domain.ChartSpec{
		ID:     ChartCorrelation,
		Type:   domain.ChartTypeHeatmap,
		Title:  "Correlation Between Weather and Rentals",
		Series: []domain.ChartSeries{},
		Matrix: &m,
	}
}

// TopDaysChart shows the highest rental days.
func TopDaysChart(top []domain.DailyRecord, field domain.Field) domain.ChartSpec {
	points := make([]domain.ChartPoint, len(top))
	for i, r := range top {
		points[i] = domain.ChartPoint{
			X:     r.Date.Format(domain.DateLayout),
			Y:     domain.Float(r.Value(field)),
			Label: fmt.Sprintf("%s, %s", r.Season.Label(), r.WorkingDay.Label()),
		}
	}
	return domain.ChartSpec{
		ID:     ChartTopDays,
		Type:   domain.ChartTypeBar,
		Title:  fmt.Sprintf("Top %d Days by %s", len(top), field.Label()),
		XField: "date",
		YField: string(field),
		Series: []domain.ChartSeries{{Name: string(field), Points: points}},
	}
}

// ClusterChart scatters temperature against rentals with one series per cluster.
func ClusterChart(res domain.ClusterResult) domain.ChartSpec {
	spec := domain.ChartSpec{
		ID:     ChartClusters,
		Type:   domain.ChartTypeClusterScatter,
		Title:  fmt.Sprintf("Day Clusters (k=%d)", res.K),
		XField: string(domain.FieldTemperature),
		YField: string(domain.FieldCount),
		Series: []domain.ChartSeries{},
		Meta:   map[string]interface{}{"k": res.K, "seed": res.Seed},
	}
	if res.Skipped {
		spec.Meta["skipped"] = true
		spec.Meta["reason"] = res.Reason
		return spec
	}

	byCluster := make([][]domain.ChartPoint, res.K)
	for _, r := range res.Rows {
		if r.Cluster == nil {
			continue
		}
		byCluster[*r.Cluster] = append(byCluster[*r.Cluster], domain.ChartPoint{
			X:     r.Temperature,
			Y:     domain.Float(float64(r.Count)),
			Label: r.Date.Format(domain.DateLayout),
		})
	}
	for c, points := range byCluster {
		if points == nil {
			points = []domain.ChartPoint{}
		}
		spec.Series = append(spec.Series, domain.ChartSeries{Name: fmt.Sprintf("Cluster %d", c), Points: points})
	}
	spec.Meta["centroids"] = res.Centroids
	spec.Meta["features"] = res.Features
	spec.Meta["sizes"] = res.Sizes
	return spec
}

// ElbowChart plots inertia against k.
func ElbowChart(res domain.ElbowResult) domain.ChartSpec {
	points := make([]domain.ChartPoint, len(res.Points))
	for i, p := range res.Points {
		points[i] = domain.ChartPoint{X: p.K, Y: domain.Float(p.Inertia)}
	}
	spec := domain.ChartSpec{
		ID:     ChartElbow,
		Type:   domain.ChartTypeLine,
		Title:  "Elbow Method",
		XField: "k",
		YField: "inertia",
		Series: []domain.ChartSeries{{Name: "inertia", Points: points}},
	}
	if res.Skipped {
		spec.Meta = map[string]interface{}{"skipped": true, "reason": res.Reason}
	}
	return spec
}
