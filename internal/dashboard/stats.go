package dashboard

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"bikepulse/pkg/contracts/domain"
)

const densityPoints = 50

// boxStats returns the five-number summary of v, or nil when v is empty.
func boxStats(v []float64) *domain.BoxStats {
	if len(v) == 0 {
		return nil
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)

	b := &domain.BoxStats{
		Q1:     stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.LinInterp, sorted, nil),
	}
	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr

	// Whiskers reach the most extreme points inside the fences.
	b.Min, b.Max = math.Inf(1), math.Inf(-1)
	for _, x := range sorted {
		if x < lo || x > hi {
			b.Outliers = append(b.Outliers, x)
			continue
		}
		b.Min = math.Min(b.Min, x)
		b.Max = math.Max(b.Max, x)
	}
	return b
}

// density estimates a Gaussian kernel density of v on an even grid using Scott's bandwidth.
func density(v []float64) ([]domain.ChartPoint, float64) {
	if len(v) < 2 {
		return []domain.ChartPoint{}, 0
	}
	sd := stat.StdDev(v, nil)
	if sd == 0 || math.IsNaN(sd) {
		return []domain.ChartPoint{}, 0
	}
	n := float64(len(v))
	h := sd * math.Pow(n, -0.2)

	lo, hi := floats.Min(v)-2*h, floats.Max(v)+2*h
	step := (hi - lo) / float64(densityPoints-1)
	norm := 1 / (n * h * math.Sqrt(2*math.Pi))

	points := make([]domain.ChartPoint, densityPoints)
	for i := range points {
		x := lo + float64(i)*step
		sum := 0.0
		for _, xi := range v {
			u := (x - xi) / h
			sum += math.Exp(-0.5 * u * u)
		}
		points[i] = domain.ChartPoint{X: x, Y: domain.Float(sum * norm)}
	}
	return points, h
}

// sturgesBins returns the Sturges bin count for n observations.
func sturgesBins(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// histogram counts v into Sturges bins. The last bin is closed on the right.
func histogram(v []float64) []domain.ChartPoint {
	if len(v) == 0 {
		return []domain.ChartPoint{}
	}
	lo, hi := floats.Min(v), floats.Max(v)
	bins := sturgesBins(len(v))
	if hi == lo {
		return []domain.ChartPoint{{
			X:     lo,
			Y:     domain.Float(float64(len(v))),
			Label: fmt.Sprintf("[%g, %g]", lo, hi),
		}}
	}

	width := (hi - lo) / float64(bins)
	counts := make([]float64, bins)
	for _, x := range v {
		idx := int((x - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	points := make([]domain.ChartPoint, bins)
	for i := range counts {
		start := lo + float64(i)*width
		end := start + width
		label := fmt.Sprintf("[%.0f, %.0f)", start, end)
		if i == bins-1 {
			label = fmt.Sprintf("[%.0f, %.0f]", start, hi)
		}
		points[i] = domain.ChartPoint{X: start + width/2, Y: domain.Float(counts[i]), Label: label}
	}
	return points
}
