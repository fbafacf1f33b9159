package clustering

import (
	"context"
	"fmt"

	"bikepulse/internal/dataprocessing"
	"bikepulse/pkg/contracts/domain"
)

const (
	MinK = 2
	MaxK = 6
	// MinRows is the smallest selection that is clustered; smaller ones are skipped.
	MinRows = 6

	ReasonInsufficientData = "insufficient data"
)

// Options selects features and k-means settings for Cluster and Elbow
type Options struct {
	Features []domain.Field
	Seed     int64
	NInit    int
	MaxIter  int
}

func (o Options) features() []domain.Field {
	if len(o.Features) == 0 {
		return domain.DefaultFeatures
	}
	return o.Features
}

func (o Options) config(k int) Config {
	return Config{K: k, Seed: o.Seed, NInit: o.NInit, MaxIter: o.MaxIter}
}

// ValidateK checks k against the selectable range.
func ValidateK(k int) error {
	if k < MinK || k > MaxK {
		return fmt.Errorf("%w: k must be between %d and %d, got %d", ErrInvalidK, MinK, MaxK, k)
	}
	return nil
}

// Cluster groups rows into k clusters over standardized features.
// Selections of fewer than MinRows rows are returned as skipped, not as an error.
// Labels are set on copies; rows is never modified.
func Cluster(ctx context.Context, rows []domain.DailyRecord, k int, opts Options) (domain.ClusterResult, error) {
	features := opts.features()
	result := domain.ClusterResult{K: k, Seed: opts.Seed, Features: features}
	if err := ValidateK(k); err != nil {
		return result, err
	}
	if len(rows) < MinRows {
		result.Skipped = true
		result.Reason = ReasonInsufficientData
		return result, nil
	}

	points := matrix(rows, features)
	scaled, scaler := Standardize(points)
	model, err := Fit(ctx, scaled, opts.config(k))
	if err != nil {
		return result, err
	}

	result.Rows = make([]domain.DailyRecord, len(rows))
	result.Sizes = make([]int, k)
	totals := make([]float64, k)
	for i, r := range rows {
		label := model.Labels[i]
		r.Cluster = &label
		result.Rows[i] = r
		result.Sizes[label]++
		totals[label] += float64(r.Count)
	}

	result.MeanCount = make([]float64, k)
	for c := range totals {
		if result.Sizes[c] > 0 {
			result.MeanCount[c] = totals[c] / float64(result.Sizes[c])
		}
	}
	result.Centroids = make([][]float64, k)
	for c, centroid := range model.Centroids {
		result.Centroids[c] = scaler.Inverse(centroid)
	}
	result.Inertia = model.Inertia
	result.Iterations = model.Iterations
	return result, nil
}

// Elbow returns the best inertia for every k in [kMin, kMax].
func Elbow(ctx context.Context, rows []domain.DailyRecord, kMin, kMax int, opts Options) (domain.ElbowResult, error) {
	result := domain.ElbowResult{Points: []domain.ElbowPoint{}}
	if kMin < 1 || kMax < kMin {
		return result, fmt.Errorf("%w: range %d..%d", ErrInvalidK, kMin, kMax)
	}
	if len(rows) < MinRows {
		result.Skipped = true
		result.Reason = ReasonInsufficientData
		return result, nil
	}
	if kMax > len(rows) {
		kMax = len(rows)
	}

	scaled, _ := Standardize(matrix(rows, opts.features()))
	for k := kMin; k <= kMax; k++ {
		model, err := Fit(ctx, scaled, opts.config(k))
		if err != nil {
			return result, err
		}
		result.Points = append(result.Points, domain.ElbowPoint{K: k, Inertia: model.Inertia})
	}
	return result, nil
}

// BestCluster returns the cluster with the highest mean count.
func BestCluster(res domain.ClusterResult) (int, bool) {
	if res.Skipped || len(res.MeanCount) == 0 {
		return 0, false
	}
	best := -1
	for c, m := range res.MeanCount {
		if res.Sizes[c] == 0 {
			continue
		}
		if best < 0 || m > res.MeanCount[best] {
			best = c
		}
	}
	return best, best >= 0
}

func matrix(rows []domain.DailyRecord, features []domain.Field) [][]float64 {
	cols := make([][]float64, len(features))
	for j, f := range features {
		cols[j] = dataprocessing.Column(rows, f)
	}
	points := make([][]float64, len(rows))
	for i := range rows {
		p := make([]float64, len(features))
		for j := range features {
			p[j] = cols[j][i]
		}
		points[i] = p
	}
	return points
}
