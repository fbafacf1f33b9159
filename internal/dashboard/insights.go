package dashboard

import (
	"fmt"

	"bikepulse/internal/clustering"
	"bikepulse/internal/dataprocessing"
	"bikepulse/pkg/contracts/domain"
)

// Insight identifiers
const (
	InsightSeason      = "season"
	InsightWorkingDay  = "workingday"
	InsightMonth       = "month"
	InsightCorrelation = "correlation"
	InsightCluster     = "cluster"
)

// NoDataText is shown in place of an insight when the selection is empty.
const NoDataText = "No data for the current selection."

func noData(id string) domain.Insight {
	return domain.Insight{ID: id, Text: NoDataText, NoData: true}
}

// SeasonInsight names the season with the highest mean.
func SeasonInsight(seasonMeans domain.GroupResult) domain.Insight {
	top, err := seasonMeans.SortedDesc().First()
	if err != nil {
		return noData(InsightSeason)
	}
	return domain.Insight{
		ID:   InsightSeason,
		Text: fmt.Sprintf("Season with the highest average rentals is **%s**.", top.Label),
	}
}

// WorkingDayInsight names the day type with the higher mean.
func WorkingDayInsight(dayTypeMeans domain.GroupResult) domain.Insight {
	top, err := dayTypeMeans.SortedDesc().First()
	if err != nil {
		return noData(InsightWorkingDay)
	}
	return domain.Insight{
		ID:   InsightWorkingDay,
		Text: fmt.Sprintf("Rentals are higher on **%s**.", top.Label),
	}
}

// MonthInsight names the month with the highest mean.
func MonthInsight(monthMeans domain.GroupResult) domain.Insight {
	top, err := monthMeans.SortedDesc().First()
	if err != nil {
		return noData(InsightMonth)
	}
	return domain.Insight{
		ID:   InsightMonth,
		Text: fmt.Sprintf("Highest-average month is %s.", top.Label),
	}
}

// CorrelationInsight names the feature most correlated with rentals.
func CorrelationInsight(m domain.CorrelationMatrix) domain.Insight {
	field, r, ok := dataprocessing.StrongestWith(m, domain.FieldCount)
	if !ok {
		return noData(InsightCorrelation)
	}
	return domain.Insight{
		ID:   InsightCorrelation,
		Text: fmt.Sprintf("Strongest correlation with rentals is %s (r=%.2f).", field.Label(), r),
	}
}

// ClusterInsight names the cluster with the highest mean rentals.
func ClusterInsight(res domain.ClusterResult) domain.Insight {
	best, ok := clustering.BestCluster(res)
	if !ok {
		in := noData(InsightCluster)
		if res.Skipped {
			in.Text = fmt.Sprintf("Clustering skipped: %s.", res.Reason)
		}
		return in
	}
	return domain.Insight{
		ID:   InsightCluster,
		Text: fmt.Sprintf("Cluster %d has the highest average rentals.", best),
	}
}
