package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// DayCSVHeader is the column layout of the daily bike-sharing file.
const DayCSVHeader = "instant,dteday,season,yr,mnth,holiday,weekday,workingday,weathersit,temp,atemp,hum,windspeed,casual,registered,cnt"

// DayRow is one synthetic day of the daily file
type DayRow struct {
	Date       time.Time
	Season     int
	WorkingDay int
	Temp       float64
	Hum        float64
	Windspeed  float64
	Count      int
}

// SampleDays returns n consecutive days starting on 2011-01-01. Seasons follow the
// calendar quarter, weekends are non-working days, and rentals rise with temperature.
func SampleDays(n int) []DayRow {
	start := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]DayRow, n)
	for i := range rows {
		d := start.AddDate(0, 0, i)
		season := (int(d.Month())-1)/3 + 1
		working := 1
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			working = 0
		}
		temp := 0.2 + 0.1*float64(season) + float64(i%7)/100
		cnt := int(temp*5000) + 300*working
		rows[i] = DayRow{
			Date:       d,
			Season:     season,
			WorkingDay: working,
			Temp:       temp,
			Hum:        0.5 + float64(i%5)/20,
			Windspeed:  0.1 + float64(i%3)/20,
			Count:      cnt,
		}
	}
	return rows
}

// DayCSV renders rows in the daily file layout.
func DayCSV(rows []DayRow) string {
	var b strings.Builder
	b.WriteString(DayCSVHeader)
	b.WriteByte('\n')
	for i, r := range rows {
		fmt.Fprintf(&b, "%d,%s,%d,%d,%d,0,%d,%d,1,%.4f,%.4f,%.4f,%.4f,0,%d,%d\n",
			i+1, r.Date.Format("2006-01-02"), r.Season, r.Date.Year()-2011, int(r.Date.Month()),
			int(r.Date.Weekday()), r.WorkingDay, r.Temp, r.Temp, r.Hum, r.Windspeed, r.Count, r.Count)
	}
	return b.String()
}

// WriteDayCSV writes rows to dir/day.csv and returns the path.
func WriteDayCSV(t *testing.T, dir string, rows []DayRow) string {
	t.Helper()
	path := filepath.Join(dir, "day.csv")
	if err := os.WriteFile(path, []byte(DayCSV(rows)), 0644); err != nil {
		t.Fatalf("failed to write dataset fixture: %v", err)
	}
	return path
}
