package clustering

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scaler holds per-column population mean and standard deviation
type Scaler struct {
	Means []float64
	Stds  []float64
}

// FitScaler computes column statistics of a row-major matrix.
func FitScaler(points [][]float64) Scaler {
	if len(points) == 0 {
		return Scaler{}
	}
	dims := len(points[0])
	s := Scaler{Means: make([]float64, dims), Stds: make([]float64, dims)}
	col := make([]float64, len(points))
	for j := 0; j < dims; j++ {
		for i, p := range points {
			col[i] = p[j]
		}
		if floats.Max(col) == floats.Min(col) {
			s.Means[j] = col[0]
			continue
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		s.Means[j] = mean
		s.Stds[j] = math.Sqrt(variance)
	}
	return s
}

// Transform returns z-scores. Columns without spread map to 0.
func (s Scaler) Transform(points [][]float64) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		z := make([]float64, len(p))
		for j, v := range p {
			if s.Stds[j] > 0 {
				z[j] = (v - s.Means[j]) / s.Stds[j]
			}
		}
		out[i] = z
	}
	return out
}

// Inverse maps a standardized point back to original units.
func (s Scaler) Inverse(z []float64) []float64 {
	out := make([]float64, len(z))
	for j, v := range z {
		out[j] = v*s.Stds[j] + s.Means[j]
	}
	return out
}

// Standardize fits a scaler on points and transforms them.
func Standardize(points [][]float64) ([][]float64, Scaler) {
	s := FitScaler(points)
	return s.Transform(points), s
}
