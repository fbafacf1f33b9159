package exporter

import (
	"context"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"bikepulse/pkg/contracts/domain"
)

// parquetRow is the on-disk schema of an exported day
type parquetRow struct {
	Date        int32   `parquet:"name=date,type=INT32,convertedtype=DATE"`
	Season      string  `parquet:"name=season,type=BYTE_ARRAY,convertedtype=UTF8"`
	WorkingDay  string  `parquet:"name=working_day,type=BYTE_ARRAY,convertedtype=UTF8"`
	Year        int32   `parquet:"name=year,type=INT32"`
	Month       string  `parquet:"name=month,type=BYTE_ARRAY,convertedtype=UTF8"`
	Temperature float64 `parquet:"name=temperature,type=DOUBLE"`
	Humidity    float64 `parquet:"name=humidity,type=DOUBLE"`
	Windspeed   float64 `parquet:"name=windspeed,type=DOUBLE"`
	Count       int64   `parquet:"name=count,type=INT64"`
	Cluster     *int32  `parquet:"name=cluster,type=INT32,repetitiontype=OPTIONAL"`
}

const secondsPerDay = 24 * 60 * 60

func toParquetRow(r domain.DailyRecord) parquetRow {
	row := parquetRow{
		Date:        int32(r.Date.Unix() / secondsPerDay),
		Season:      string(r.Season),
		WorkingDay:  string(r.WorkingDay),
		Year:        int32(r.Year),
		Month:       r.Month,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Windspeed:   r.Windspeed,
		Count:       int64(r.Count),
	}
	if r.Cluster != nil {
		c := int32(*r.Cluster)
		row.Cluster = &c
	}
	return row
}

// ParquetWriter writes SNAPPY-compressed parquet
type ParquetWriter struct {
	parallel int64
}

// NewParquetWriter creates a parquet writer.
func NewParquetWriter() *ParquetWriter { return &ParquetWriter{parallel: 1} }

// Format implements Writer.
func (w *ParquetWriter) Format() Format { return FormatParquet }

// Write encodes rows into out.
func (w *ParquetWriter) Write(ctx context.Context, out io.Writer, rows []domain.DailyRecord) (err error) {
	pw, err := writer.NewParquetWriterFromWriter(out, new(parquetRow), w.parallel)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, r := range rows {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := pw.Write(toParquetRow(r)); err != nil {
			return fmt.Errorf("failed to write parquet row %d: %w", i, err)
		}
	}

	// WriteStop can panic on internal writer errors.
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("failed to stop parquet writer: %w", e)
			} else {
				err = fmt.Errorf("failed to stop parquet writer: panic value: %v", r)
			}
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to stop parquet writer: %w", err)
	}
	return nil
}
