package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikepulse/pkg/contracts/domain"
)

const dayCSV = `instant,dteday,season,yr,mnth,holiday,weekday,workingday,weathersit,temp,atemp,hum,windspeed,casual,registered,cnt
1,2011-01-01,1,0,1,0,6,0,2,0.344167,0.363625,0.805833,0.160446,331,654,985
2,2011-01-02,1,0,1,0,0,0,2,0.363478,0.353739,0.696087,0.248539,131,670,801
3,2011-01-03,1,0,1,0,1,1,1,0.196364,0.189405,0.437273,0.248309,120,1229,1349
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "day.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantRows    int
		wantErr     bool
		errContains string
	}{
		{
			name:     "standard day.csv header",
			content:  dayCSV,
			wantRows: 3,
		},
		{
			name:     "header with BOM",
			content:  "\xEF\xBB\xBF" + dayCSV,
			wantRows: 3,
		},
		{
			name:     "date alias and case-insensitive columns",
			content:  "Date,Season,WorkingDay,Temp,Hum,Windspeed,Cnt\n2011-01-01,1,0,0.3,0.8,0.1,985\n",
			wantRows: 1,
		},
		{
			name:        "missing cnt column",
			content:     "dteday,season,workingday,temp,hum,windspeed\n2011-01-01,1,0,0.3,0.8,0.1\n",
			wantErr:     true,
			errContains: "cnt",
		},
		{
			name:        "header only",
			content:     "dteday,season,workingday,temp,hum,windspeed,cnt\n",
			wantErr:     true,
			errContains: "no data rows",
		},
		{
			name:        "malformed temperature",
			content:     "dteday,season,workingday,temp,hum,windspeed,cnt\n2011-01-01,1,0,warm,0.8,0.1,985\n",
			wantErr:     true,
			errContains: "invalid temp",
		},
		{
			name:        "NaN humidity",
			content:     "dteday,season,workingday,temp,hum,windspeed,cnt\n2011-01-01,1,0,0.3,NaN,0.1,985\n",
			wantErr:     true,
			errContains: "invalid hum",
		},
		{
			name:        "infinite windspeed",
			content:     "dteday,season,workingday,temp,hum,windspeed,cnt\n2011-01-01,1,0,0.3,0.8,+Inf,985\n",
			wantErr:     true,
			errContains: "invalid windspeed",
		},
		{
			name:     "blank lines are skipped",
			content:  "dteday,season,workingday,temp,hum,windspeed,cnt\n2011-01-01,1,0,0.3,0.8,0.1,985\n,,,,,,\n",
			wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := LoadCSV(context.Background(), writeCSV(t, tt.content))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
		})
	}
}

func TestLoadCSV_ParsesValues(t *testing.T) {
	rows, err := ReadCSV(context.Background(), strings.NewReader(dayCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "2011-01-01", first.Date)
	assert.Equal(t, 1, first.Season)
	assert.Equal(t, 0, first.WorkingDay)
	assert.InDelta(t, 0.344167, first.Temp, 1e-9)
	assert.InDelta(t, 0.805833, first.Hum, 1e-9)
	assert.InDelta(t, 0.160446, first.Windspeed, 1e-9)
	assert.Equal(t, 985, first.Count)
}

func TestLoadCSV_MissingColumnIsTyped(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("dteday,season\n2011-01-01,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadCSV_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadCSV(ctx, strings.NewReader(dayCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	ds, err := Load(context.Background(), writeCSV(t, dayCSV))
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	records := ds.Records()
	assert.Equal(t, domain.SeasonSpring, records[0].Season)
	assert.Equal(t, domain.DayTypeWeekendOrHoliday, records[0].WorkingDay)
	assert.Equal(t, domain.DayTypeWorkingDay, records[2].WorkingDay)
	assert.Equal(t, 2011, records[0].Year)
	assert.Equal(t, "January", records[0].Month)

	// Records hands out copies
	records[0].Count = -1
	assert.Equal(t, 985, ds.Records()[0].Count)

	summary := ds.Summary()
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, "2011-01-01", summary.Start)
	assert.Equal(t, "2011-01-03", summary.End)
	assert.Equal(t, []int{2011}, summary.Years)
	assert.Equal(t, []domain.Season{domain.SeasonSpring}, summary.Seasons)
	assert.Equal(t, []domain.DayType{domain.DayTypeWeekendOrHoliday, domain.DayTypeWorkingDay}, summary.DayTypes)
}

func TestLoad_UnmappedCodesListEveryRow(t *testing.T) {
	content := "dteday,season,workingday,temp,hum,windspeed,cnt\n" +
		"2011-01-01,5,0,0.3,0.8,0.1,985\n" +
		"2011-01-02,1,0,0.3,0.8,0.1,801\n" +
		"2011-01-03,1,2,0.3,0.8,0.1,1349\n"

	ds, err := Load(context.Background(), writeCSV(t, content))
	require.Error(t, err)
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, ErrUnmappedCode)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "line 4")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
