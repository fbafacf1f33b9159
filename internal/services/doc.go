// Package services implements the business logic layer of BikePulse.
// It sits between the HTTP and websocket transports and the pipeline packages
// (dataprocessing, clustering, dashboard, exporter), so transports never touch
// the dataset directly.
//
// # Dataset lifecycle
//
// DashboardService owns the loaded dataset. The dataset is immutable and kept
// behind an atomic pointer:
//
//	svc := services.NewDashboardService(services.DashboardOptionsFromConfig(cfg))
//	if _, err := svc.Load(ctx); err != nil {
//	    return err
//	}
//
// Reload swaps the pointer once the new file has been read successfully and
// then runs the listeners registered with OnReload. A failed reload keeps
// serving the previous dataset.
//
// # Views
//
// Every view method filters a fresh copy of the base rows with the caller's
// selection and recomputes from scratch:
//
//	- Overview, Exploration: complete dashboard views with charts and insights
//	- Series, Correlation, Top: individual pipeline results
//	- Cluster, Elbow: k-means and the inertia curve
//	- Export, ExportFiles: filtered rows as CSV, Excel or parquet
//
// # Error Handling
//
// Services return the sentinels in errors.go (or the pipeline errors they wrap)
// and leave the mapping to HTTP status codes to internal/errors.
//
// # Observability
//
// Service methods open spans (dataset.load, dashboard.overview,
// dashboard.exploration, dashboard.cluster, export.write) and record the
// business metrics defined in internal/infrastructure.
package services
