package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the civil date format used in CSV input, JSON and query strings.
const DateLayout = "2006-01-02"

var (
	// ErrNoData is returned by accessors that need at least one row or group.
	ErrNoData = errors.New("no data")
	// ErrDatasetNotLoaded is returned by views requested before a successful load.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	// ErrInvalidSelection is returned for selection parameters that cannot be parsed.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Season is the meteorological season of a day
type Season string

const (
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
	SeasonFall   Season = "Fall"
	SeasonWinter Season = "Winter"
)

// AllSeasons lists seasons in code order (1..4).
var AllSeasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// SeasonFromCode maps the dataset season code to a Season.
func SeasonFromCode(code int) (Season, bool) {
	switch code {
	case 1:
		return SeasonSpring, true
	case 2:
		return SeasonSummer, true
	case 3:
		return SeasonFall, true
	case 4:
		return SeasonWinter, true
	}
	return "", false
}

// ParseSeason parses a season name case-insensitively.
func ParseSeason(s string) (Season, error) {
	for _, season := range AllSeasons {
		if strings.EqualFold(strings.TrimSpace(s), string(season)) {
			return season, nil
		}
	}
	return "", fmt.Errorf("unknown season %q", s)
}

// Label returns the display label.
func (s Season) Label() string { return string(s) }

// DayType tells whether a day was a working day
type DayType string

const (
	DayTypeWorkingDay       DayType = "WorkingDay"
	DayTypeWeekendOrHoliday DayType = "WeekendOrHoliday"
)

// AllDayTypes lists day types in code order (0, 1).
var AllDayTypes = []DayType{DayTypeWeekendOrHoliday, DayTypeWorkingDay}

// DayTypeFromCode maps the dataset workingday code to a DayType.
func DayTypeFromCode(code int) (DayType, bool) {
	switch code {
	case 0:
		return DayTypeWeekendOrHoliday, true
	case 1:
		return DayTypeWorkingDay, true
	}
	return "", false
}

// ParseDayType accepts either the identifier or the display label.
func ParseDayType(s string) (DayType, error) {
	s = strings.TrimSpace(s)
	for _, dt := range AllDayTypes {
		if strings.EqualFold(s, string(dt)) || strings.EqualFold(s, dt.Label()) {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unknown day type %q", s)
}

// Label returns the caption shown on charts and insights.
func (d DayType) Label() string {
	switch d {
	case DayTypeWorkingDay:
		return "Working Day"
	case DayTypeWeekendOrHoliday:
		return "Weekend/Holiday"
	}
	return string(d)
}

// RawRecord is one CSV row before categorical remapping
type RawRecord struct {
	Line       int
	Date       string
	Season     int
	WorkingDay int
	Temp       float64
	Hum        float64
	Windspeed  float64
	Count      int
}

// DailyRecord is one day of rentals with categoricals resolved
type DailyRecord struct {
	Date        time.Time `json:"date"`
	Season      Season    `json:"season"`
	WorkingDay  DayType   `json:"working_day"`
	Year        int       `json:"year"`
	Month       string    `json:"month"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Windspeed   float64   `json:"windspeed"`
	Count       int       `json:"count"`
	Cluster     *int      `json:"cluster,omitempty"`
}

// MarshalJSON renders Date as a civil date.
func (r DailyRecord) MarshalJSON() ([]byte, error) {
	type alias DailyRecord
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(r), Date: r.Date.Format(DateLayout)})
}

// Value returns the numeric value of a field.
func (r DailyRecord) Value(f Field) float64 {
	switch f {
	case FieldCount:
		return float64(r.Count)
	case FieldTemperature:
		return r.Temperature
	case FieldHumidity:
		return r.Humidity
	case FieldWindspeed:
		return r.Windspeed
	}
	return 0
}

// GroupValue returns the group label of the record under key.
func (r DailyRecord) GroupValue(key GroupKey) string {
	switch key {
	case GroupBySeason:
		return string(r.Season)
	case GroupByWorkingDay:
		return string(r.WorkingDay)
	case GroupByYear:
		return fmt.Sprintf("%d", r.Year)
	case GroupByMonth:
		return r.Month
	}
	return ""
}

// Field is a numeric column of DailyRecord
type Field string

const (
	FieldCount       Field = "count"
	FieldTemperature Field = "temperature"
	FieldHumidity    Field = "humidity"
	FieldWindspeed   Field = "windspeed"
)

// DefaultFeatures is used for correlation and clustering when none are given.
var DefaultFeatures = []Field{FieldTemperature, FieldHumidity, FieldWindspeed, FieldCount}

// ParseField parses a field name.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldCount, "cnt":
		return FieldCount, nil
	case FieldTemperature, "temp":
		return FieldTemperature, nil
	case FieldHumidity, "hum":
		return FieldHumidity, nil
	case FieldWindspeed, "wind":
		return FieldWindspeed, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Label returns a short caption for axis titles.
func (f Field) Label() string {
	switch f {
	case FieldCount:
		return "Rentals"
	case FieldTemperature:
		return "Temperature"
	case FieldHumidity:
		return "Humidity"
	case FieldWindspeed:
		return "Windspeed"
	}
	return string(f)
}

// GroupKey names a categorical dimension used for grouping
type GroupKey string

const (
	GroupBySeason     GroupKey = "season"
	GroupByWorkingDay GroupKey = "workingDay"
	GroupByYear       GroupKey = "year"
	GroupByMonth      GroupKey = "month"
)

// AggFunc is an aggregation function
type AggFunc string

const (
	AggMean AggFunc = "mean"
	AggSum  AggFunc = "sum"
)
