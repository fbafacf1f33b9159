package dataprocessing

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"bikepulse/pkg/contracts/domain"
)

// CorrelationMatrix computes pairwise Pearson coefficients between fields.
// A zero-variance field yields NaN across its row and column, diagonal included.
// Fewer than two rows yields an all-NaN matrix.
func CorrelationMatrix(rows []domain.DailyRecord, fields []domain.Field) domain.CorrelationMatrix {
	if len(fields) == 0 {
		fields = domain.DefaultFeatures
	}
	fields = append([]domain.Field(nil), fields...)

	n := len(fields)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		for j := range values[i] {
			values[i][j] = math.NaN()
		}
	}
	m := domain.CorrelationMatrix{Fields: fields, Values: values}
	if len(rows) < 2 {
		return m
	}

	columns := make([][]float64, n)
	defined := make([]bool, n)
	for i, f := range fields {
		columns[i] = Column(rows, f)
		defined[i] = floats.Max(columns[i]) > floats.Min(columns[i])
	}

	for i := 0; i < n; i++ {
		if !defined[i] {
			continue
		}
		values[i][i] = 1
		for j := i + 1; j < n; j++ {
			if !defined[j] {
				continue
			}
			r := stat.Correlation(columns[i], columns[j], nil)
			values[i][j] = r
			values[j][i] = r
		}
	}
	return m
}

// StrongestWith returns the field other than target with the largest absolute coefficient.
func StrongestWith(m domain.CorrelationMatrix, target domain.Field) (domain.Field, float64, bool) {
	var (
		best  domain.Field
		bestR = math.NaN()
	)
	for _, f := range m.Fields {
		if f == target {
			continue
		}
		r, ok := m.At(target, f)
		if !ok || math.IsNaN(r) {
			continue
		}
		if math.IsNaN(bestR) || math.Abs(r) > math.Abs(bestR) {
			best, bestR = f, r
		}
	}
	return best, bestR, !math.IsNaN(bestR)
}
