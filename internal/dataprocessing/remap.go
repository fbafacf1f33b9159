package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"bikepulse/pkg/contracts/domain"
)

// ErrUnmappedCode is wrapped by every row whose season or workingday code has no label.
var ErrUnmappedCode = errors.New("unmapped categorical code")

// ErrInvalidDate is wrapped by every row whose date cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// RemapCategoricals resolves season and workingday codes to labels and derives Year and Month.
// Every bad row is reported; when any row fails no rows are returned.
func RemapCategoricals(raw []domain.RawRecord) ([]domain.DailyRecord, error) {
	var result *multierror.Error
	out := make([]domain.DailyRecord, 0, len(raw))

	for _, r := range raw {
		date, err := ParseDate(r.Date)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("line %d: %w %q", r.Line, ErrInvalidDate, r.Date))
			continue
		}
		season, ok := domain.SeasonFromCode(r.Season)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("line %d: %w: season=%d", r.Line, ErrUnmappedCode, r.Season))
			continue
		}
		dayType, ok := domain.DayTypeFromCode(r.WorkingDay)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("line %d: %w: workingday=%d", r.Line, ErrUnmappedCode, r.WorkingDay))
			continue
		}

		out = append(out, domain.DailyRecord{
			Date:        date,
			Season:      season,
			WorkingDay:  dayType,
			Year:        date.Year(),
			Month:       date.Month().String(),
			Temperature: r.Temp,
			Humidity:    r.Hum,
			Windspeed:   r.Windspeed,
			Count:       r.Count,
		})
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseDate parses a civil date in any accepted layout, returning UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
}
