package exporter

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bikepulse/internal/dataprocessing"
	"bikepulse/pkg/contracts/domain"
)

const (
	rowsSheet    = "Rows"
	summarySheet = "Summary"
)

// XLSXWriter writes the rows sheet and a per-group summary sheet
type XLSXWriter struct{}

// NewXLSXWriter creates an Excel writer.
func NewXLSXWriter() *XLSXWriter { return &XLSXWriter{} }

// Format implements Writer.
func (w *XLSXWriter) Format() Format { return FormatXLSX }

// Write renders the workbook into out.
func (w *XLSXWriter) Write(ctx context.Context, out io.Writer, rows []domain.DailyRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rowsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := w.writeRows(ctx, f, rows); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.writeSummary(f, rows); err != nil {
		return err
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) writeRows(ctx context.Context, f *excelize.File, rows []domain.DailyRecord) error {
	sw, err := f.NewStreamWriter(rowsSheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range rows {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		var cluster interface{} = ""
		if r.Cluster != nil {
			cluster = *r.Cluster
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.Date.Format(domain.DateLayout),
			string(r.Season),
			string(r.WorkingDay),
			r.Year,
			r.Month,
			r.Temperature,
			r.Humidity,
			r.Windspeed,
			r.Count,
			cluster,
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return sw.Flush()
}

// writeSummary lists mean and total rentals per season and per day type.
func (w *XLSXWriter) writeSummary(f *excelize.File, rows []domain.DailyRecord) error {
	headers := []string{"group_by", "group", "days", "mean_count", "total_count"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(summarySheet, cell, h); err != nil {
			return err
		}
	}

	row := 2
	for _, key := range []domain.GroupKey{domain.GroupBySeason, domain.GroupByWorkingDay, domain.GroupByYear} {
		means, err := dataprocessing.AggregateByGroup(rows, key, domain.FieldCount, domain.AggMean)
		if err != nil {
			return err
		}
		sums, err := dataprocessing.AggregateByGroup(rows, key, domain.FieldCount, domain.AggSum)
		if err != nil {
			return err
		}
		for i, m := range means.Stats {
			values := []interface{}{string(key), m.Label, m.Rows, m.Value, sums.Stats[i].Value}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(summarySheet, cell, v); err != nil {
					return err
				}
			}
			row++
		}
	}
	return nil
}
