package dataprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"bikepulse/pkg/contracts/domain"
)

// AggregateByGroup reduces field per group of key with fn.
// Groups appear in the order they are first seen; empty input yields an empty result.
func AggregateByGroup(rows []domain.DailyRecord, key domain.GroupKey, field domain.Field, fn domain.AggFunc) (domain.GroupResult, error) {
	result := domain.GroupResult{Key: key, Field: field, Func: fn, Stats: []domain.GroupStat{}}
	if err := validateAggregation(key, field, fn); err != nil {
		return result, err
	}

	var order []string
	values := map[string][]float64{}
	labels := map[string]string{}
	for _, r := range rows {
		group := r.GroupValue(key)
		if _, seen := values[group]; !seen {
			order = append(order, group)
			labels[group] = groupLabel(r, key)
		}
		values[group] = append(values[group], r.Value(field))
	}

	for _, group := range order {
		v := values[group]
		gs := domain.GroupStat{Group: group, Label: labels[group], Rows: len(v)}
		switch fn {
		case domain.AggSum:
			gs.Value = floats.Sum(v)
		case domain.AggMean:
			gs.Value = mean(v)
		}
		result.Stats = append(result.Stats, gs)
	}
	return result, nil
}

// Summarize computes the headline KPIs of rows. Mean is nil when rows is empty.
func Summarize(rows []domain.DailyRecord) domain.KPIs {
	kpis := domain.KPIs{Count: len(rows)}
	for _, r := range rows {
		kpis.Total += r.Count
	}
	if len(rows) > 0 {
		m := float64(kpis.Total) / float64(len(rows))
		kpis.Mean = &m
		kpis.MeanRounded = int(m)
	}
	return kpis
}

// Column extracts field from every row.
func Column(rows []domain.DailyRecord, field domain.Field) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Value(field)
	}
	return out
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return stat.Mean(v, nil)
}

func groupLabel(r domain.DailyRecord, key domain.GroupKey) string {
	if key == domain.GroupByWorkingDay {
		return r.WorkingDay.Label()
	}
	return r.GroupValue(key)
}

func validateAggregation(key domain.GroupKey, field domain.Field, fn domain.AggFunc) error {
	switch key {
	case domain.GroupBySeason, domain.GroupByWorkingDay, domain.GroupByYear, domain.GroupByMonth:
	default:
		return fmt.Errorf("unsupported group key %q", key)
	}
	switch field {
	case domain.FieldCount, domain.FieldTemperature, domain.FieldHumidity, domain.FieldWindspeed:
	default:
		return fmt.Errorf("unsupported value field %q", field)
	}
	switch fn {
	case domain.AggMean, domain.AggSum:
	default:
		return fmt.Errorf("unsupported aggregation %q", fn)
	}
	return nil
}
