// Command bikeweb serves the bike-sharing dashboard API and websocket sessions.
package main

import (
	"log/slog"
	"os"

	"bikepulse/internal/app"
	"bikepulse/internal/infrastructure"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = application.Run()
	if err != nil {
		application.Logger.Error("Application error", slog.String("error", err.Error()))
	}
	if closeErr := infrastructure.CloseLogFile(); closeErr != nil {
		slog.Warn("Failed to close log file", slog.String("error", closeErr.Error()))
	}
	if err != nil {
		os.Exit(1)
	}
}
