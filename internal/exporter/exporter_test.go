package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bikepulse/pkg/contracts/domain"
)

func testRows() []domain.DailyRecord {
	label := 1
	d1 := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2011, 7, 1, 0, 0, 0, 0, time.UTC)
	return []domain.DailyRecord{
		{Date: d1, Season: domain.SeasonSpring, WorkingDay: domain.DayTypeWeekendOrHoliday, Year: 2011, Month: "January",
			Temperature: 0.344167, Humidity: 0.805833, Windspeed: 0.160446, Count: 985},
		{Date: d2, Season: domain.SeasonFall, WorkingDay: domain.DayTypeWorkingDay, Year: 2011, Month: "July",
			Temperature: 0.75, Humidity: 0.6, Windspeed: 0.2, Count: 6000, Cluster: &label},
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Format
		wantErr bool
	}{
		{"single", "csv", []Format{FormatCSV}, false},
		{"list with spaces and duplicates", "csv, XLSX,parquet,csv", []Format{FormatCSV, FormatXLSX, FormatParquet}, false},
		{"excel alias", "excel", []Format{FormatXLSX}, false},
		{"unknown", "csv,pdf", nil, true},
		{"empty", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormats(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSVWriter_Write(t *testing.T) {
	tests := []struct {
		name    string
		bom     bool
		wantBOM bool
	}{
		{"with BOM", true, true},
		{"without BOM", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVWriter(tt.bom).Write(context.Background(), &buf, testRows()))

			content := buf.Bytes()
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(content, utf8BOM))
			content = bytes.TrimPrefix(content, utf8BOM)

			records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, 3)
			assert.Equal(t, Headers, records[0])
			assert.Equal(t, []string{"2011-01-01", "Spring", "WeekendOrHoliday", "2011", "January", "0.344167", "0.805833", "0.160446", "985", ""}, records[1])
			assert.Equal(t, "1", records[2][9])
		})
	}
}

func TestXLSXWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter().Write(context.Background(), &buf, testRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{rowsSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(rowsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "2011-07-01", rows[2][0])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	// header + 2 seasons + 2 day types + 1 year
	assert.Len(t, summary, 6)
	assert.Equal(t, "season", summary[1][0])
	assert.Equal(t, "Spring", summary[1][1])
}

func TestParquetWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewParquetWriter().Write(context.Background(), &buf, testRows()))

	content := buf.Bytes()
	require.Greater(t, len(content), 8)
	assert.Equal(t, "PAR1", string(content[:4]))
	assert.Equal(t, "PAR1", string(content[len(content)-4:]))
}

func TestToParquetRow(t *testing.T) {
	rows := testRows()
	first := toParquetRow(rows[0])
	assert.Equal(t, int32(14975), first.Date, "days since epoch")
	assert.Nil(t, first.Cluster)

	second := toParquetRow(rows[1])
	require.NotNil(t, second.Cluster)
	assert.Equal(t, int32(1), *second.Cluster)
	assert.Equal(t, int64(6000), second.Count)
}

func TestExporter_WriteAll(t *testing.T) {
	dir := t.TempDir()
	exp := New(true, nil)

	results, err := exp.WriteAll(context.Background(), dir, "rentals", AllFormats, testRows())
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, res := range results {
		info, err := os.Stat(res.Path)
		require.NoError(t, err, res.Format)
		assert.Equal(t, info.Size(), res.Bytes)
		assert.Equal(t, 2, res.Rows)
		assert.Equal(t, "rentals"+res.Format.Extension(), filepath.Base(res.Path))
	}
}

func TestExporter_WriteUnknownFormat(t *testing.T) {
	err := New(false, nil).Write(context.Background(), Format("pdf"), &bytes.Buffer{}, testRows())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	results, err := New(false, nil).WriteAll(context.Background(), t.TempDir(), "x", []Format{FormatCSV, "pdf"}, testRows())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
	assert.Len(t, results, 1)
}
