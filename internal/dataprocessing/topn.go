package dataprocessing

import (
	"sort"

	"bikepulse/pkg/contracts/domain"
)

// DefaultTopN is the number of rows shown in the top days table.
const DefaultTopN = 10

// TopN returns up to n rows with the highest field value. Equal values keep their input order.
func TopN(rows []domain.DailyRecord, field domain.Field, n int) []domain.DailyRecord {
	if n <= 0 || len(rows) == 0 {
		return []domain.DailyRecord{}
	}
	sorted := make([]domain.DailyRecord, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value(field) > sorted[j].Value(field)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
