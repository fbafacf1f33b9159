package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"bikepulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Headers is the column layout shared by every export format.
var Headers = []string{"date", "season", "working_day", "year", "month", "temperature", "humidity", "windspeed", "count", "cluster"}

// recordStrings flattens a row in Headers order.
func recordStrings(r domain.DailyRecord) []string {
	cluster := ""
	if r.Cluster != nil {
		cluster = formatInt(*r.Cluster)
	}
	return []string{
		r.Date.Format(domain.DateLayout),
		string(r.Season),
		string(r.WorkingDay),
		formatInt(r.Year),
		r.Month,
		formatFloat(r.Temperature),
		formatFloat(r.Humidity),
		formatFloat(r.Windspeed),
		formatInt(r.Count),
		cluster,
	}
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	bom bool
}

// NewCSVWriter creates a CSV writer. With bom set, output starts with a UTF-8 BOM for Excel.
func NewCSVWriter(bom bool) *CSVWriter {
	return &CSVWriter{bom: bom}
}

// Format implements Writer.
func (w *CSVWriter) Format() Format { return FormatCSV }

// Write streams rows to out.
func (w *CSVWriter) Write(ctx context.Context, out io.Writer, rows []domain.DailyRecord) error {
	if w.bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, r := range rows {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := writer.Write(recordStrings(r)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
