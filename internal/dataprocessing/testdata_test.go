package dataprocessing

import (
	"time"

	"bikepulse/pkg/contracts/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func record(date string, season domain.Season, dt domain.DayType, cnt int) domain.DailyRecord {
	d := day(date)
	return domain.DailyRecord{
		Date:        d,
		Season:      season,
		WorkingDay:  dt,
		Year:        d.Year(),
		Month:       d.Month().String(),
		Temperature: 0.2 + float64(cnt)/1000,
		Humidity:    0.5,
		Windspeed:   0.3 - float64(cnt%4)/100,
		Count:       cnt,
	}
}

// fixture is the worked example: two Spring rows and one Summer row.
func fixture() []domain.DailyRecord {
	return []domain.DailyRecord{
		record("2011-01-01", domain.SeasonSpring, domain.DayTypeWeekendOrHoliday, 100),
		record("2011-01-03", domain.SeasonSpring, domain.DayTypeWorkingDay, 150),
		record("2011-06-01", domain.SeasonSummer, domain.DayTypeWorkingDay, 300),
	}
}
