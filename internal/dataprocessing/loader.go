package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"bikepulse/pkg/contracts/domain"
)

var (
	// ErrMissingColumn is returned when a required CSV column is absent.
	ErrMissingColumn = errors.New("required column not found")
	// ErrEmptyDataset is returned when the CSV has a header but no rows.
	ErrEmptyDataset = errors.New("dataset has no data rows")
	// ErrNoData is returned by accessors that need at least one row.
	ErrNoData = domain.ErrNoData
)

// columnAliases maps each required column to the header names accepted for it.
var columnAliases = map[string][]string{
	"date":       {"dteday", "date", "day"},
	"season":     {"season"},
	"workingday": {"workingday", "working_day"},
	"temp":       {"temp", "temperature"},
	"hum":        {"hum", "humidity"},
	"windspeed":  {"windspeed", "wind_speed", "wind"},
	"cnt":        {"cnt", "count", "total"},
}

var requiredColumns = []string{"date", "season", "workingday", "temp", "hum", "windspeed", "cnt"}

// columnIndices holds the position of each required column
type columnIndices map[string]int

// Dataset is the immutable, fully remapped content of one CSV file.
// Records returns a fresh slice on every call.
type Dataset struct {
	records  []domain.DailyRecord
	source   string
	loadedAt time.Time
}

// NewDataset wraps already remapped rows.
func NewDataset(source string, records []domain.DailyRecord) *Dataset {
	rows := make([]domain.DailyRecord, len(records))
	copy(rows, records)
	return &Dataset{records: rows, source: source, loadedAt: time.Now().UTC()}
}

// Records returns a copy of the rows.
func (d *Dataset) Records() []domain.DailyRecord {
	rows := make([]domain.DailyRecord, len(d.records))
	copy(rows, d.records)
	return rows
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.records) }

// Source returns the path the dataset was read from.
func (d *Dataset) Source() string { return d.source }

// LoadedAt returns when the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Summary describes the span and categories present in the dataset.
func (d *Dataset) Summary() domain.DatasetSummary {
	summary := domain.DatasetSummary{
		Source:   d.source,
		Rows:     len(d.records),
		Years:    []int{},
		Seasons:  []domain.Season{},
		DayTypes: []domain.DayType{},
		LoadedAt: d.loadedAt,
	}
	if len(d.records) == 0 {
		return summary
	}

	start, end := d.records[0].Date, d.records[0].Date
	years := map[int]bool{}
	seasons := map[domain.Season]bool{}
	dayTypes := map[domain.DayType]bool{}
	for _, r := range d.records {
		if r.Date.Before(start) {
			start = r.Date
		}
		if r.Date.After(end) {
			end = r.Date
		}
		if !years[r.Year] {
			years[r.Year] = true
			summary.Years = append(summary.Years, r.Year)
		}
		seasons[r.Season] = true
		dayTypes[r.WorkingDay] = true
	}
	for _, s := range domain.AllSeasons {
		if seasons[s] {
			summary.Seasons = append(summary.Seasons, s)
		}
	}
	for _, dt := range domain.AllDayTypes {
		if dayTypes[dt] {
			summary.DayTypes = append(summary.DayTypes, dt)
		}
	}
	summary.Start = start.Format(domain.DateLayout)
	summary.End = end.Format(domain.DateLayout)
	return summary
}

// Load reads path and remaps it into a Dataset. Any malformed row or unmapped code fails the load.
func Load(ctx context.Context, path string) (*Dataset, error) {
	raw, err := LoadCSV(ctx, path)
	if err != nil {
		return nil, err
	}
	records, err := RemapCategoricals(raw)
	if err != nil {
		return nil, fmt.Errorf("remap %s: %w", path, err)
	}
	slog.InfoContext(ctx, "Dataset loaded",
		slog.String("path", path),
		slog.Int("rows", len(records)))
	return NewDataset(path, records), nil
}

// LoadCSV reads the raw rows of a day-level bike sharing CSV file.
func LoadCSV(ctx context.Context, path string) ([]domain.RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	return ReadCSV(ctx, file)
}

// ReadCSV parses raw rows from r. The header may carry a UTF-8 BOM and column aliases.
func ReadCSV(ctx context.Context, r io.Reader) ([]domain.RawRecord, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	// Remove BOM if present
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset CSV: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrEmptyDataset)
	}

	columns, err := findColumnIndices(lines[0])
	if err != nil {
		return nil, err
	}
	if len(lines) < 2 {
		return nil, ErrEmptyDataset
	}

	var result *multierror.Error
	rows := make([]domain.RawRecord, 0, len(lines)-1)
	for i, line := range lines[1:] {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lineNo := i + 2
		if isBlank(line) {
			continue
		}
		row, err := parseRow(line, columns, lineNo)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		rows = append(rows, row)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return rows, nil
}

// findColumnIndices resolves required columns, first by exact name and then case-insensitively.
func findColumnIndices(header []string) (columnIndices, error) {
	cleaned := make([]string, len(header))
	for i, col := range header {
		c := strings.TrimSpace(col)
		c = strings.TrimPrefix(c, "\ufeff")
		c = strings.Trim(c, "\u200b\u200c\u200d")
		cleaned[i] = c
	}

	indices := columnIndices{}
	for _, name := range requiredColumns {
		indices[name] = -1
		for _, alias := range columnAliases[name] {
			for i, col := range cleaned {
				if col == alias {
					indices[name] = i
					break
				}
			}
			if indices[name] >= 0 {
				break
			}
		}
		if indices[name] >= 0 {
			continue
		}
		for _, alias := range columnAliases[name] {
			for i, col := range cleaned {
				if strings.EqualFold(col, alias) {
					indices[name] = i
					break
				}
			}
			if indices[name] >= 0 {
				break
			}
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if indices[name] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v. Header: %v", ErrMissingColumn, missing, cleaned)
	}
	return indices, nil
}

func parseRow(line []string, columns columnIndices, lineNo int) (domain.RawRecord, error) {
	get := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(line) {
			return "", fmt.Errorf("line %d: column %s missing", lineNo, name)
		}
		return strings.TrimSpace(line[idx]), nil
	}

	var (
		row = domain.RawRecord{Line: lineNo}
		err error
		s   string
	)
	if row.Date, err = get("date"); err != nil {
		return row, err
	}
	if s, err = get("season"); err != nil {
		return row, err
	}
	if row.Season, err = strconv.Atoi(s); err != nil {
		return row, fmt.Errorf("line %d: invalid season %q", lineNo, s)
	}
	if s, err = get("workingday"); err != nil {
		return row, err
	}
	if row.WorkingDay, err = strconv.Atoi(s); err != nil {
		return row, fmt.Errorf("line %d: invalid workingday %q", lineNo, s)
	}
	if row.Temp, err = parseFloatColumn(line, columns, "temp", lineNo); err != nil {
		return row, err
	}
	if row.Hum, err = parseFloatColumn(line, columns, "hum", lineNo); err != nil {
		return row, err
	}
	if row.Windspeed, err = parseFloatColumn(line, columns, "windspeed", lineNo); err != nil {
		return row, err
	}
	if s, err = get("cnt"); err != nil {
		return row, err
	}
	cnt, err := strconv.ParseFloat(s, 64)
	if err != nil || cnt < 0 || cnt != float64(int(cnt)) {
		return row, fmt.Errorf("line %d: invalid cnt %q", lineNo, s)
	}
	row.Count = int(cnt)
	return row, nil
}

func parseFloatColumn(line []string, columns columnIndices, name string, lineNo int) (float64, error) {
	idx := columns[name]
	if idx >= len(line) {
		return 0, fmt.Errorf("line %d: column %s missing", lineNo, name)
	}
	s := strings.TrimSpace(line[idx])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("line %d: invalid %s %q", lineNo, name, s)
	}
	return v, nil
}

func isBlank(line []string) bool {
	for _, field := range line {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
