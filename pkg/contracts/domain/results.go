package domain

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// GroupStat is the aggregate of one group
type GroupStat struct {
	Group string  `json:"group"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Rows  int     `json:"rows"`
}

// GroupResult holds per-group aggregates in first-seen order
type GroupResult struct {
	Key   GroupKey    `json:"key"`
	Field Field       `json:"field"`
	Func  AggFunc     `json:"func"`
	Stats []GroupStat `json:"stats"`
}

// Len returns the number of groups.
func (g GroupResult) Len() int { return len(g.Stats) }

// IsEmpty reports whether no group was produced.
func (g GroupResult) IsEmpty() bool { return len(g.Stats) == 0 }

// First returns the first group, or ErrNoData when there is none.
func (g GroupResult) First() (GroupStat, error) {
	if len(g.Stats) == 0 {
		return GroupStat{}, ErrNoData
	}
	return g.Stats[0], nil
}

// SortedDesc returns a copy ordered by value, highest first. Ties keep their order.
func (g GroupResult) SortedDesc() GroupResult {
	stats := make([]GroupStat, len(g.Stats))
	copy(stats, g.Stats)
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Value > stats[j].Value })
	g.Stats = stats
	return g
}

// Lookup returns the stat for a group label.
func (g GroupResult) Lookup(group string) (GroupStat, bool) {
	for _, s := range g.Stats {
		if s.Group == group {
			return s, true
		}
	}
	return GroupStat{}, false
}

// DailyPoint is one date of the rentals time series
type DailyPoint struct {
	Date          time.Time `json:"date"`
	Count         int       `json:"count"`
	MovingAverage *float64  `json:"moving_average"`
}

// MarshalJSON renders Date as a civil date. MovingAverage stays null until the window fills.
func (p DailyPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date          string   `json:"date"`
		Count         int      `json:"count"`
		MovingAverage *float64 `json:"moving_average"`
	}{p.Date.Format(DateLayout), p.Count, p.MovingAverage})
}

// CorrelationMatrix is a symmetric matrix of Pearson coefficients.
// Undefined coefficients are NaN and serialize as null.
type CorrelationMatrix struct {
	Fields []Field
	Values [][]float64
}

// At returns the coefficient between fields a and b.
func (m CorrelationMatrix) At(a, b Field) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

func (m CorrelationMatrix) index(f Field) int {
	for i, field := range m.Fields {
		if field == f {
			return i
		}
	}
	return -1
}

// MarshalJSON writes NaN cells as null.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			v := v
			values[i][j] = &v
		}
	}
	fields := m.Fields
	if fields == nil {
		fields = []Field{}
	}
	return json.Marshal(struct {
		Fields []Field      `json:"fields"`
		Values [][]*float64 `json:"values"`
	}{fields, values})
}

// KPIs are the headline numbers of a selection
type KPIs struct {
	Total       int      `json:"total"`
	Mean        *float64 `json:"mean"`
	MeanRounded int      `json:"mean_rounded"`
	Count       int      `json:"count"`
}

// ClusterResult is the output of a k-means run over a selection
type ClusterResult struct {
	K          int           `json:"k"`
	Seed       int64         `json:"seed"`
	Features   []Field       `json:"features"`
	Skipped    bool          `json:"skipped"`
	Reason     string        `json:"reason,omitempty"`
	Rows       []DailyRecord `json:"rows,omitempty"`
	Centroids  [][]float64   `json:"centroids,omitempty"`
	Sizes      []int         `json:"sizes,omitempty"`
	MeanCount  []float64     `json:"mean_count,omitempty"`
	Inertia    float64       `json:"inertia"`
	Iterations int           `json:"iterations"`
}

// Labels returns the cluster label of each row, in row order.
func (c ClusterResult) Labels() []int {
	labels := make([]int, 0, len(c.Rows))
	for _, r := range c.Rows {
		if r.Cluster != nil {
			labels = append(labels, *r.Cluster)
		}
	}
	return labels
}

// ElbowPoint is the best inertia found for k clusters
type ElbowPoint struct {
	K       int     `json:"k"`
	Inertia float64 `json:"inertia"`
}

// ElbowResult is the inertia curve over a k range
type ElbowResult struct {
	Points  []ElbowPoint `json:"points"`
	Skipped bool         `json:"skipped"`
	Reason  string       `json:"reason,omitempty"`
}

// DatasetSummary describes the loaded dataset
type DatasetSummary struct {
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Start    string    `json:"start,omitempty"`
	End      string    `json:"end,omitempty"`
	Years    []int     `json:"years"`
	Seasons  []Season  `json:"seasons"`
	DayTypes []DayType `json:"working_days"`
	LoadedAt time.Time `json:"loaded_at"`
}
