package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"bikepulse/pkg/contracts/domain"
)

// Writer encodes rows in one format
type Writer interface {
	Format() Format
	Write(ctx context.Context, out io.Writer, rows []domain.DailyRecord) error
}

// Result describes one written export file
type Result struct {
	Format Format `json:"format"`
	Path   string `json:"path"`
	Bytes  int64  `json:"bytes"`
	Rows   int    `json:"rows"`
}

// Exporter dispatches rows to the writer of each format
type Exporter struct {
	writers map[Format]Writer
	logger  *slog.Logger
}

// New creates an exporter with the CSV, Excel and parquet writers.
func New(csvBOM bool, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Exporter{writers: map[Format]Writer{}, logger: logger.With(slog.String("component", "exporter"))}
	for _, w := range []Writer{NewCSVWriter(csvBOM), NewXLSXWriter(), NewParquetWriter()} {
		e.writers[w.Format()] = w
	}
	return e
}

// Write encodes rows in format into out.
func (e *Exporter) Write(ctx context.Context, format Format, out io.Writer, rows []domain.DailyRecord) error {
	w, ok := e.writers[format]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return w.Write(ctx, out, rows)
}

// WriteAll writes one file per format into dir concurrently. Every failed format is
// reported in the returned error; files of formats that succeeded are kept.
func (e *Exporter) WriteAll(ctx context.Context, dir, baseName string, formats []Format, rows []domain.DailyRecord) ([]Result, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var (
		mu      sync.Mutex
		merr    *multierror.Error
		results = make([]Result, len(formats))
		ok      = make([]bool, len(formats))
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		i, format := i, format
		g.Go(func() error {
			res, err := e.writeFile(gctx, dir, baseName, format, rows)
			if err != nil {
				mu.Lock()
				merr = multierror.Append(merr, fmt.Errorf("%s: %w", format, err))
				mu.Unlock()
				return nil
			}
			results[i] = res
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	written := make([]Result, 0, len(formats))
	for i := range results {
		if ok[i] {
			written = append(written, results[i])
		}
	}
	return written, merr.ErrorOrNil()
}

func (e *Exporter) writeFile(ctx context.Context, dir, baseName string, format Format, rows []domain.DailyRecord) (Result, error) {
	path := filepath.Join(dir, baseName+format.Extension())
	file, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create file: %w", err)
	}

	counter := &countingWriter{w: file}
	if err := e.Write(ctx, format, counter, rows); err != nil {
		file.Close()
		os.Remove(path)
		return Result{}, err
	}
	if err := file.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close file: %w", err)
	}

	e.logger.InfoContext(ctx, "Export written",
		slog.String("format", string(format)),
		slog.String("path", path),
		slog.Int("rows", len(rows)),
		slog.Int64("bytes", counter.n))
	return Result{Format: format, Path: path, Bytes: counter.n, Rows: len(rows)}, nil
}

// countingWriter counts bytes passed through to w
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// CountingWriter wraps w so callers can report bytes written.
func CountingWriter(w io.Writer) (io.Writer, func() int64) {
	c := &countingWriter{w: w}
	return c, func() int64 { return c.n }
}
