// Package app wires the BikePulse web server together: configuration, logging,
// OpenTelemetry, the dashboard service, the websocket hub and the chi router.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, YAML and the environment
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Create the dashboard service and the websocket hub, and subscribe the
//	   hub to dataset reloads
//	4. Set up HTTP handlers and middleware
//	5. Load the dataset on Start; a dataset that cannot be read is fatal
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM. Stop closes websocket sessions, drains
// in-flight requests within the configured shutdown timeout and flushes
// telemetry.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit, leaving the exit code to main.
package app
