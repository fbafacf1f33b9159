package dataprocessing

import "bikepulse/pkg/contracts/domain"

// Filter returns the rows matching every active constraint of sel, in input order.
// The input slice is never modified.
func Filter(rows []domain.DailyRecord, sel domain.FilterSelection) []domain.DailyRecord {
	out := make([]domain.DailyRecord, 0, len(rows))
	for _, r := range rows {
		if sel.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
