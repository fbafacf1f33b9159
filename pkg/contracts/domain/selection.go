package domain

import (
	"encoding/json"
	"time"
)

// DateRange is an inclusive civil date interval
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range, both ends included.
func (d DateRange) Contains(t time.Time) bool {
	return !t.Before(d.Start) && !t.After(d.End)
}

// FilterSelection is an immutable set of optional row constraints.
// A nil season or day type set is inactive; an empty non-nil set matches nothing.
// The zero value selects every row.
type FilterSelection struct {
	year      *int
	seasons   map[Season]struct{}
	dayTypes  map[DayType]struct{}
	dateRange *DateRange
}

// NewSelection returns a selection with no active constraints.
func NewSelection() FilterSelection {
	return FilterSelection{}
}

// WithYear returns a copy constrained to year.
func (s FilterSelection) WithYear(year int) FilterSelection {
	s.year = &year
	return s
}

// WithSeasons returns a copy constrained to the given seasons.
// Calling it with no arguments produces an active, empty constraint.
func (s FilterSelection) WithSeasons(seasons ...Season) FilterSelection {
	set := make(map[Season]struct{}, len(seasons))
	for _, season := range seasons {
		set[season] = struct{}{}
	}
	s.seasons = set
	return s
}

// WithDayTypes returns a copy constrained to the given day types.
func (s FilterSelection) WithDayTypes(dayTypes ...DayType) FilterSelection {
	set := make(map[DayType]struct{}, len(dayTypes))
	for _, dt := range dayTypes {
		set[dt] = struct{}{}
	}
	s.dayTypes = set
	return s
}

// WithDateRange returns a copy constrained to [start, end].
func (s FilterSelection) WithDateRange(start, end time.Time) FilterSelection {
	s.dateRange = &DateRange{Start: start, End: end}
	return s
}

// Year returns the year constraint, if any.
func (s FilterSelection) Year() (int, bool) {
	if s.year == nil {
		return 0, false
	}
	return *s.year, true
}

// Seasons returns the selected seasons in canonical order and whether the constraint is active.
func (s FilterSelection) Seasons() ([]Season, bool) {
	if s.seasons == nil {
		return nil, false
	}
	out := make([]Season, 0, len(s.seasons))
	for _, season := range AllSeasons {
		if _, ok := s.seasons[season]; ok {
			out = append(out, season)
		}
	}
	return out, true
}

// DayTypes returns the selected day types in canonical order and whether the constraint is active.
func (s FilterSelection) DayTypes() ([]DayType, bool) {
	if s.dayTypes == nil {
		return nil, false
	}
	out := make([]DayType, 0, len(s.dayTypes))
	for _, dt := range AllDayTypes {
		if _, ok := s.dayTypes[dt]; ok {
			out = append(out, dt)
		}
	}
	return out, true
}

// DateRange returns the date constraint, if any.
func (s FilterSelection) DateRange() (DateRange, bool) {
	if s.dateRange == nil {
		return DateRange{}, false
	}
	return *s.dateRange, true
}

// Matches reports whether r satisfies every active constraint.
func (s FilterSelection) Matches(r DailyRecord) bool {
	if s.year != nil && r.Year != *s.year {
		return false
	}
	if s.seasons != nil {
		if _, ok := s.seasons[r.Season]; !ok {
			return false
		}
	}
	if s.dayTypes != nil {
		if _, ok := s.dayTypes[r.WorkingDay]; !ok {
			return false
		}
	}
	if s.dateRange != nil && !s.dateRange.Contains(r.Date) {
		return false
	}
	return true
}

// MarshalJSON echoes the selection; inactive constraints are omitted.
func (s FilterSelection) MarshalJSON() ([]byte, error) {
	out := struct {
		Year     *int       `json:"year,omitempty"`
		Seasons  *[]Season  `json:"seasons,omitempty"`
		DayTypes *[]DayType `json:"working_days,omitempty"`
		Start    string     `json:"start,omitempty"`
		End      string     `json:"end,omitempty"`
	}{Year: s.year}
	if seasons, ok := s.Seasons(); ok {
		out.Seasons = &seasons
	}
	if dayTypes, ok := s.DayTypes(); ok {
		out.DayTypes = &dayTypes
	}
	if s.dateRange != nil {
		out.Start = s.dateRange.Start.Format(DateLayout)
		out.End = s.dateRange.End.Format(DateLayout)
	}
	return json.Marshal(out)
}
