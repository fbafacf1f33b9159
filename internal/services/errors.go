package services

import (
	"errors"

	"bikepulse/internal/exporter"
	"bikepulse/pkg/contracts/domain"
)

// Dashboard service errors
var (
	// Dataset errors
	ErrDatasetNotLoaded = domain.ErrDatasetNotLoaded
	ErrReloadInProgress = errors.New("dataset reload already in progress")

	// Selection errors
	ErrNoData           = domain.ErrNoData
	ErrInvalidSelection = domain.ErrInvalidSelection

	// Export errors
	ErrUnsupportedFormat = exporter.ErrUnsupportedFormat
)
