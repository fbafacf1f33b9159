package dataprocessing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikepulse/pkg/contracts/domain"
)

func TestFilter(t *testing.T) {
	rows := fixture()

	tests := []struct {
		name      string
		selection domain.FilterSelection
		wantCount []int
	}{
		{"no constraints", domain.NewSelection(), []int{100, 150, 300}},
		{"spring only", domain.NewSelection().WithSeasons(domain.SeasonSpring), []int{100, 150}},
		{"empty season set", domain.NewSelection().WithSeasons(), []int{}},
		{"empty day type set", domain.NewSelection().WithDayTypes(), []int{}},
		{"working days", domain.NewSelection().WithDayTypes(domain.DayTypeWorkingDay), []int{150, 300}},
		{"year", domain.NewSelection().WithYear(2012), []int{}},
		{"date range inclusive", domain.NewSelection().WithDateRange(day("2011-01-03"), day("2011-06-01")), []int{150, 300}},
		{
			"conjunction",
			domain.NewSelection().WithSeasons(domain.SeasonSpring, domain.SeasonSummer).WithDayTypes(domain.DayTypeWorkingDay).WithYear(2011),
			[]int{150, 300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(rows, tt.selection)
			counts := make([]int, len(got))
			for i, r := range got {
				counts[i] = r.Count
			}
			assert.Equal(t, tt.wantCount, counts)

			again := Filter(got, tt.selection)
			assert.Equal(t, got, again, "filter must be idempotent")
		})
	}

	assert.Equal(t, fixture(), rows, "input must not be modified")
}

func TestAggregateByGroup_WorkedExample(t *testing.T) {
	rows := Filter(fixture(), domain.NewSelection().WithSeasons(domain.SeasonSpring))
	require.Len(t, rows, 2)

	kpis := Summarize(rows)
	assert.Equal(t, 250, kpis.Total)
	require.NotNil(t, kpis.Mean)
	assert.InDelta(t, 125.0, *kpis.Mean, 1e-9)
	assert.Equal(t, 125, kpis.MeanRounded)

	winter := Filter(fixture(), domain.NewSelection().WithSeasons(domain.SeasonWinter))
	empty := Summarize(winter)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.Count)
	assert.Nil(t, empty.Mean)

	res, err := AggregateByGroup(winter, domain.GroupBySeason, domain.FieldCount, domain.AggMean)
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
	_, err = res.First()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAggregateByGroup(t *testing.T) {
	rows := fixture()

	means, err := AggregateByGroup(rows, domain.GroupByWorkingDay, domain.FieldCount, domain.AggMean)
	require.NoError(t, err)
	require.Equal(t, 2, means.Len())
	assert.Equal(t, "WeekendOrHoliday", means.Stats[0].Group, "first-seen order")
	assert.Equal(t, "Weekend/Holiday", means.Stats[0].Label)
	assert.InDelta(t, 100.0, means.Stats[0].Value, 1e-9)
	assert.InDelta(t, 225.0, means.Stats[1].Value, 1e-9)

	top, err := means.SortedDesc().First()
	require.NoError(t, err)
	assert.Equal(t, "WorkingDay", top.Group)
	assert.Equal(t, "WeekendOrHoliday", means.Stats[0].Group, "SortedDesc must not reorder the receiver")

	sums, err := AggregateByGroup(rows, domain.GroupBySeason, domain.FieldCount, domain.AggSum)
	require.NoError(t, err)
	seasonMeans, err := AggregateByGroup(rows, domain.GroupBySeason, domain.FieldCount, domain.AggMean)
	require.NoError(t, err)
	for _, s := range sums.Stats {
		m, ok := seasonMeans.Lookup(s.Group)
		require.True(t, ok)
		assert.InDelta(t, s.Value/float64(s.Rows), m.Value, 1e-9, "sum/count == mean")
	}

	months, err := AggregateByGroup(rows, domain.GroupByMonth, domain.FieldCount, domain.AggSum)
	require.NoError(t, err)
	assert.Equal(t, []string{"January", "June"}, []string{months.Stats[0].Group, months.Stats[1].Group})

	_, err = AggregateByGroup(rows, "weekday", domain.FieldCount, domain.AggMean)
	assert.Error(t, err)
}

func TestSortedDesc_StableOnTies(t *testing.T) {
	res := domain.GroupResult{Stats: []domain.GroupStat{
		{Group: "a", Value: 1}, {Group: "b", Value: 5}, {Group: "c", Value: 5}, {Group: "d", Value: 2},
	}}
	sorted := res.SortedDesc()
	var groups []string
	for _, s := range sorted.Stats {
		groups = append(groups, s.Group)
	}
	assert.Equal(t, []string{"b", "c", "d", "a"}, groups)
}

func TestDailyTimeSeries(t *testing.T) {
	var rows []domain.DailyRecord
	dates := []string{"2011-01-05", "2011-01-01", "2011-01-02", "2011-01-03", "2011-01-04", "2011-01-06", "2011-01-07", "2011-01-08"}
	for i, d := range dates {
		rows = append(rows, record(d, domain.SeasonSpring, domain.DayTypeWorkingDay, (i+1)*10))
	}
	// duplicate date is summed
	rows = append(rows, record("2011-01-01", domain.SeasonSpring, domain.DayTypeWorkingDay, 5))

	series := DailyTimeSeries(rows, 7)
	require.Len(t, series, 8)

	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Date.Before(series[i].Date), "dates must be strictly ascending")
	}
	assert.Equal(t, 25, series[0].Count)

	for i := 0; i < 6; i++ {
		assert.Nil(t, series[i].MovingAverage, "index %d", i)
	}
	for i := 6; i < len(series); i++ {
		require.NotNil(t, series[i].MovingAverage)
		sum := 0
		for j := i - 6; j <= i; j++ {
			sum += series[j].Count
		}
		assert.InDelta(t, float64(sum)/7, *series[i].MovingAverage, 1e-9)
	}

	data, err := json.Marshal(series[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2011-01-01","count":25,"moving_average":null}`, string(data))

	assert.Empty(t, DailyTimeSeries(nil, 7))
}

func TestCorrelationMatrix(t *testing.T) {
	rows := fixture()
	m := CorrelationMatrix(rows, nil)
	require.Equal(t, domain.DefaultFeatures, m.Fields)

	n := len(m.Fields)
	hum := -1
	for i, f := range m.Fields {
		if f == domain.FieldHumidity {
			hum = i
		}
	}
	require.GreaterOrEqual(t, hum, 0)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a, b := m.Values[i][j], m.Values[j][i]
			if math.IsNaN(a) {
				assert.True(t, math.IsNaN(b))
				continue
			}
			assert.InDelta(t, a, b, 1e-12, "symmetric at %d,%d", i, j)
		}
		if i == hum {
			assert.True(t, math.IsNaN(m.Values[i][i]), "zero-variance humidity has NaN diagonal")
		} else {
			assert.InDelta(t, 1.0, m.Values[i][i], 1e-12)
		}
	}

	r, ok := m.At(domain.FieldTemperature, domain.FieldCount)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9, "temperature is a linear function of count in the fixture")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), "null")

	single := CorrelationMatrix(rows[:1], nil)
	for _, row := range single.Values {
		for _, v := range row {
			assert.True(t, math.IsNaN(v))
		}
	}
}

func TestStrongestWith(t *testing.T) {
	m := CorrelationMatrix(fixture(), nil)
	field, r, ok := StrongestWith(m, domain.FieldCount)
	require.True(t, ok)
	assert.Equal(t, domain.FieldTemperature, field)
	assert.InDelta(t, 1.0, r, 1e-9)

	_, _, ok = StrongestWith(CorrelationMatrix(nil, nil), domain.FieldCount)
	assert.False(t, ok)
}

func TestTopN(t *testing.T) {
	rows := []domain.DailyRecord{
		record("2011-01-01", domain.SeasonSpring, domain.DayTypeWorkingDay, 10),
		record("2011-01-02", domain.SeasonSpring, domain.DayTypeWorkingDay, 50),
		record("2011-01-03", domain.SeasonSpring, domain.DayTypeWorkingDay, 30),
		record("2011-01-04", domain.SeasonSpring, domain.DayTypeWorkingDay, 50),
	}

	top := TopN(rows, domain.FieldCount, 3)
	require.Len(t, top, 3)
	assert.Equal(t, day("2011-01-02"), top[0].Date, "ties keep input order")
	assert.Equal(t, day("2011-01-04"), top[1].Date)
	assert.Equal(t, 30, top[2].Count)

	picked := make(map[string]bool, len(top))
	for _, r := range top {
		picked[r.Date.Format(domain.DateLayout)] = true
	}
	for _, kept := range top {
		for _, r := range rows {
			if picked[r.Date.Format(domain.DateLayout)] {
				continue
			}
			assert.GreaterOrEqual(t, kept.Count, r.Count, "top rows dominate the rest")
		}
	}

	assert.Len(t, TopN(rows, domain.FieldCount, 10), 4)
	assert.Empty(t, TopN(rows, domain.FieldCount, 0))
	assert.Empty(t, TopN(nil, domain.FieldCount, 5))
	assert.Equal(t, 10, rows[0].Count, "input must not be reordered")
}
