// Package shared holds helpers used across BikePulse packages that belong to no
// single layer.
//
// The testutil subpackage provides a capturing slog handler for asserting on
// structured logs and synthetic daily bike-sharing datasets for loader,
// service and handler tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	path := testutil.WriteDayCSV(t, t.TempDir(), testutil.SampleDays(60))
package shared
