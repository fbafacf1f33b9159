package dataprocessing

import (
	"sort"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// DefaultMovingAverageWindow is the trailing window of the daily trend line.
const DefaultMovingAverageWindow = 7

// DailyTimeSeries sums rentals per date in ascending date order and attaches a trailing
// moving average. Points before the window fills carry a nil average.
func DailyTimeSeries(rows []domain.DailyRecord, window int) []domain.DailyPoint {
	if window <= 0 {
		window = DefaultMovingAverageWindow
	}

	totals := map[time.Time]int{}
	for _, r := range rows {
		totals[r.Date] += r.Count
	}
	points := make([]domain.DailyPoint, 0, len(totals))
	for date, count := range totals {
		points = append(points, domain.DailyPoint{Date: date, Count: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	sum := 0
	for i := range points {
		sum += points[i].Count
		if i >= window {
			sum -= points[i-window].Count
		}
		if i >= window-1 {
			avg := float64(sum) / float64(window)
			points[i].MovingAverage = &avg
		}
	}
	return points
}
