// Package dataprocessing implements the filter-aggregate pipeline behind both dashboards.
//
// # Data Flow
//
//	day.csv → LoadCSV → RawRecords → RemapCategoricals → Dataset
//	Dataset.Records → Filter(selection) → AggregateByGroup / DailyTimeSeries /
//	CorrelationMatrix / TopN / Summarize
//
// Loading is strict: a missing column, a malformed number or an unmapped season or
// workingday code fails the whole load, and every offending line is reported in a
// single multierror.
//
// Every function after loading is pure. Inputs are never modified, so concurrent
// requests can share one Dataset without locking.
//
// # Usage
//
//	ds, err := dataprocessing.Load(ctx, "data/day.csv")
//	if err != nil {
//	    return err
//	}
//	rows := dataprocessing.Filter(ds.Records(), domain.NewSelection().WithSeasons(domain.SeasonSpring))
//	byDayType, _ := dataprocessing.AggregateByGroup(rows, domain.GroupByWorkingDay, domain.FieldCount, domain.AggMean)
//	series := dataprocessing.DailyTimeSeries(rows, dataprocessing.DefaultMovingAverageWindow)
package dataprocessing
