package services

import (
	"context"
	"log/slog"
)

// logServiceError logs a failed service operation. The trace handler adds
// trace_id from ctx so the entry correlates with the request that triggered it.
func logServiceError(ctx context.Context, logger *slog.Logger, action string, err error, attrs ...slog.Attr) {
	allAttrs := []slog.Attr{
		slog.String("action", action),
		slog.String("error", err.Error()),
	}
	allAttrs = append(allAttrs, attrs...)

	logger.LogAttrs(ctx, slog.LevelError, "service operation failed", allAttrs...)
}
