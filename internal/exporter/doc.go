// Package exporter writes filtered rows as CSV, Excel or parquet.
//
// CSVWriter streams rows with an optional UTF-8 BOM for Excel compatibility.
// XLSXWriter adds a summary sheet with per-season, per-day-type and per-year
// means and totals. ParquetWriter produces SNAPPY-compressed files.
//
// Example usage:
//
//	exp := exporter.New(true, logger)
//	results, err := exp.WriteAll(ctx, "data/exports", "rentals", exporter.AllFormats, rows)
package exporter
